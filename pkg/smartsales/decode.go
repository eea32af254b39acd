package smartsales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
)

// Response decoders try the known envelope shapes in a fixed order and fail
// loudly when none match, so backend contract drift surfaces as an error.

func shapeError(endpoint string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, fmt.Sprintf("unexpected response shape from %s", endpoint)).
		WithDetails(map[string]any{"endpoint": endpoint})
}

// decodeList accepts a bare array, then an array under key, "data" or "results".
func decodeList[T any](endpoint string, body []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, shapeError(endpoint, fmt.Errorf("empty body"))
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, shapeError(endpoint, err)
		}
		return items, nil
	}

	envelope, err := objectEnvelope(trimmed)
	if err != nil {
		return nil, shapeError(endpoint, err)
	}
	if err := rejectNotOK(endpoint, envelope); err != nil {
		return nil, err
	}
	for _, candidate := range []string{key, "data", "results"} {
		raw, ok := envelope[candidate]
		if !ok || !isJSONArray(raw) {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, shapeError(endpoint, err)
		}
		return items, nil
	}
	return nil, shapeError(endpoint, fmt.Errorf("no array at top level or under %q, \"data\" or \"results\"", key))
}

// decodeOne accepts an object under key, then under "data", then the bare object.
func decodeOne[T any](endpoint string, body []byte, key string) (T, error) {
	var zero T
	envelope, err := objectEnvelope(bytes.TrimSpace(body))
	if err != nil {
		return zero, shapeError(endpoint, err)
	}
	if err := rejectNotOK(endpoint, envelope); err != nil {
		return zero, err
	}

	payload := bytes.TrimSpace(body)
	for _, candidate := range []string{key, "data"} {
		if raw, ok := envelope[candidate]; ok && isJSONObject(raw) {
			payload = raw
			break
		}
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, shapeError(endpoint, err)
	}
	return out, nil
}

// decodeEnvelope reads sales-style {ok, error, ...} bodies into T after the ok check.
func decodeEnvelope[T any](endpoint string, body []byte) (T, error) {
	var zero T
	envelope, err := objectEnvelope(bytes.TrimSpace(body))
	if err != nil {
		return zero, shapeError(endpoint, err)
	}
	if err := rejectNotOK(endpoint, envelope); err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, shapeError(endpoint, err)
	}
	return out, nil
}

func objectEnvelope(body []byte) (map[string]json.RawMessage, error) {
	if !isJSONObject(body) {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// rejectNotOK turns {"ok": false, "error": "..."} into a validation error carrying the backend text.
func rejectNotOK(endpoint string, envelope map[string]json.RawMessage) error {
	raw, ok := envelope["ok"]
	if !ok {
		return nil
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err != nil || flag {
		return nil
	}
	message := ""
	for _, key := range []string{"error", "message"} {
		if text, ok := envelope[key]; ok {
			var s string
			if json.Unmarshal(text, &s) == nil && strings.TrimSpace(s) != "" {
				message = strings.TrimSpace(s)
				break
			}
		}
	}
	if message == "" {
		message = fmt.Sprintf("%s was rejected by the backend", endpoint)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"endpoint": endpoint})
}

func isJSONArray(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

package smartsales

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/smartsales/pkg/config"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.BackendConfig{
		BaseURL:            server.URL + "/api",
		Timeout:            2 * time.Second,
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Minute,
	}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func authed() context.Context {
	return WithToken(context.Background(), "backend-token")
}

func TestClientAttachesBearerAndResolvesPath(t *testing.T) {
	var gotAuth, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `[]`)
	})

	if _, err := client.ListProducts(authed()); err != nil {
		t.Fatalf("list products: %v", err)
	}
	if gotAuth != "Bearer backend-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotPath != "/api/products/productos" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestClientRequiresCredentialsWithoutCallingBackend(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.CreateCheckout(context.Background(), []CheckoutItem{{ProductID: 1, Quantity: 1}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no backend call, got %d", calls)
	}
}

func TestClientMapsStatusAndSurfacesBackendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok": false, "error": "Stock insuficiente para Laptop"}`)
	})

	_, err := client.CreateCheckout(authed(), []CheckoutItem{{ProductID: 1, Quantity: 9}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "Stock insuficiente para Laptop" {
		t.Fatalf("expected backend message, got %q", typed.Message())
	}
	details, _ := typed.Details().(map[string]any)
	if details["status"] != http.StatusBadRequest {
		t.Fatalf("expected status in details, got %v", details)
	}
}

func TestClientMapsStatusWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetProduct(authed(), 99)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientTransportFailureIsDependencyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(config.BackendConfig{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.ListProducts(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if typed.Message() != "could not reach server" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestClientBreakerOpensAfterServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		if _, err := client.ListProducts(authed()); !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
			t.Fatalf("call %d: expected upstream error, got %v", i, err)
		}
	}

	_, err := client.ListProducts(authed())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected breaker-open dependency error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected open breaker to skip the backend, calls=%d", got)
	}
}

func TestClientClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 4; i++ {
		_, _ = client.GetProduct(authed(), 1)
	}
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Fatalf("expected every 4xx call to reach the backend, calls=%d", got)
	}
}

func TestClientCallerCancellationDoesNotTripBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, `[]`)
	})

	canceled, cancel := context.WithCancel(authed())
	cancel()
	expired, cancelExpired := context.WithDeadline(authed(), time.Now().Add(-time.Second))
	defer cancelExpired()

	for i := 0; i < 3; i++ {
		if _, err := client.ListProducts(canceled); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("canceled call %d: expected dependency error, got %v", i, err)
		}
		if _, err := client.ListProducts(expired); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("expired call %d: expected dependency error, got %v", i, err)
		}
	}

	if _, err := client.ListProducts(authed()); err != nil {
		t.Fatalf("expected breaker to stay closed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one call to reach the backend, calls=%d", got)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New(config.BackendConfig{BaseURL: "api/v1"}); err == nil {
		t.Fatal("expected relative url to be rejected")
	}
}

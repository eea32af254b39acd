package smartsales

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

type multipartForm struct {
	body        []byte
	contentType string
}

// FileUpload is an optional file forwarded in a multipart request.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

type formField struct {
	name  string
	value string
}

func buildMultipart(fields []formField, fileField string, file *FileUpload) (*multipartForm, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", field.name, err)
		}
	}
	if file != nil && file.Content != nil {
		part, err := writer.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return nil, fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("copying file part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}
	return &multipartForm{body: buf.Bytes(), contentType: writer.FormDataContentType()}, nil
}

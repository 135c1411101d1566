package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

// ErrFileTooLarge is returned when an uploaded file exceeds the allowed size.
var ErrFileTooLarge = errors.New("uploaded file too large")

// ErrMissingFile is returned when a multipart request lacks the expected file.
var ErrMissingFile = errors.New("file is required")

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into v, rejecting unknown fields and
// bodies larger than MaxJSONBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}

// UploadedFile is a file read from a multipart form.
type UploadedFile struct {
	Data []byte
	// ContentType is sniffed from the data; client supplied types are ignored.
	ContentType string
}

// ReadFormFile reads the multipart file field, which must not exceed maxBytes.
// The multipart form must already be parsed or parseable from r.
func ReadFormFile(r *http.Request, field string, maxBytes int64) (*UploadedFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrMissingFile
		}
		return nil, fmt.Errorf("failed to read form file %s: %w", field, err)
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read form file %s: %w", field, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrMissingFile
	}

	return &UploadedFile{
		Data:        data,
		ContentType: http.DetectContentType(data),
	}, nil
}

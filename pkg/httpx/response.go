package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the failure envelope.
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	WriteJSON(w, code, ErrorResponse{Success: false, Error: errCode, Message: message})
}

// DataResponse is the success envelope.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// WriteData writes v inside the success envelope.
func WriteData(w http.ResponseWriter, code int, v any) {
	WriteJSON(w, code, DataResponse{Success: true, Data: v})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Every response of this service carries operator data or tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected so typos in admin tooling fail loudly.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("httpx: empty body")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("httpx: decode body: %w", err)
	}
	if dec.More() {
		return errors.New("httpx: body must contain a single JSON object")
	}
	return nil
}

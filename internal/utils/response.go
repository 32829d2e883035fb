package utils

import (
	stdjson "encoding/json"
	"net/http"

	"github.com/goccy/go-json"
)

type errorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, message string, status int) {
	WriteJSON(w, status, errorResponse{Error: message})
}

// DecodeJSON reads a request body into v, rejecting unknown fields. An
// empty body comes back as io.EOF.
func DecodeJSON(r *http.Request, v any) error {
	dec := stdjson.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteBearerError writes an RFC 6750-style 401 for bearer auth failures.
func WriteBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set(
		"WWW-Authenticate",
		`Bearer error="invalid_token", error_description="`+desc+`"`,
	)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": desc})
}

package httpx

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// JSON writes v as JSON with the given status code. Encoding errors are
// dropped; the status line has already been sent by then.
func JSON(w http.ResponseWriter, status int, v any) {
	setJSONHeaders(w)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Created writes v with 201 and a Location header naming the new resource,
// e.g. "/api/orders/{id}".
func Created(w http.ResponseWriter, location string, v any) {
	w.Header().Set("Location", location)
	JSON(w, http.StatusCreated, v)
}

// RawJSON writes an already encoded JSON body, such as a response stored
// under an Idempotency-Key, without decoding it again.
func RawJSON(w http.ResponseWriter, status int, body []byte) {
	setJSONHeaders(w)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes the {"error": message} body every endpoint uses for failures.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// SafeError returns the message a client may see. Production hides 5xx
// details behind the status text.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

func setJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

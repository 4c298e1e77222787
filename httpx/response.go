// Package httpx holds the JSON response conventions every handler in this
// app speaks: one payload helper and one error envelope whose Error field
// carries a stable snake_case reason code ("validation_failed",
// "insufficient_stock", "email_taken", ...) that clients can branch on.
package httpx

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the uniform error envelope. Details is optional structured
// context, e.g. per-field violation maps or per-line rejection lists.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON marshals payload and writes it with the given status. Encoding is done
// before the header goes out so a marshal failure never leaves partial JSON
// behind a 2xx status.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("httpx: encode response: %v", err)
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Printf("httpx: write response: %v", err)
	}
}

// JSONError writes the error envelope with the given reason code.
func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}

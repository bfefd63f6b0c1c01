// ABOUTME: JSON response helpers shared by the API handlers
// ABOUTME: Success and failure envelopes follow the {status, ...} shape

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Client-facing messages for the session endpoints. Unknown email and wrong
// password deliberately share one message to prevent account enumeration.
const (
	msgWrongCredentials = "Email or password is wrong"
	msgEmailExists      = "A user with this email already exists"
	msgInternalError    = "Something went wrong, please try again later"
)

// failBody is the JSON envelope for rejected requests.
type failBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encoding response", "error", err)
	}
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failBody{Status: "fail", Message: message})
}

package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":{"message":"Failed to marshal JSON response","code":"SERVER_ERROR"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithData wraps payload in the success envelope.
func RespondWithData(w http.ResponseWriter, code int, data interface{}) {
	RespondWithJSON(w, code, Envelope{Success: true, Data: data})
}

// RespondWithMessage wraps a confirmation message (and optional payload) in the success envelope.
func RespondWithMessage(w http.ResponseWriter, code int, message string, data interface{}) {
	RespondWithJSON(w, code, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithError resolves status, code and message from the error and writes the
// failure envelope. Unexpected errors are logged and reduced to a generic message so
// internals never leak to callers.
func RespondWithError(w http.ResponseWriter, err error) {
	status := HTTPStatusFromError(err)
	code := CodeFromError(err)

	message := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		message = "Internal server error"
		code = CodeServerError
	}

	RespondWithJSON(w, status, Envelope{Success: false, Error: &ErrorBody{Message: message, Code: code}})
}

// RespondWithErrorMessage writes a failure envelope with an explicit status and code.
func RespondWithErrorMessage(w http.ResponseWriter, status int, code, message string) {
	RespondWithJSON(w, status, Envelope{Success: false, Error: &ErrorBody{Message: message, Code: code}})
}

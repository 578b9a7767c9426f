package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type message struct {
	Message string `json:"message"`
}

func messageResponse(text string) message {
	return message{Message: text}
}

var fallbackErrorResponse []byte

func init() {
	var err error
	fallbackErrorResponse, err = json.Marshal(messageResponse("Internal error."))
	if err != nil {
		panic(fmt.Sprintf("marshal fallback response: %v", err))
	}
}

// writeJSON marshals before writing headers so an encoding failure can still
// produce a well-formed 500.
func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("writeJSON: marshal failed", "err", err)
		data = fallbackErrorResponse
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		slog.Error("writeJSON: write failed", "err", err)
	}
}

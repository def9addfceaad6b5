// Package rest implements the JSON response envelope shared by every
// endpoint: {"success": bool, "message": ..., "data": ..., "errors": ...}.
package rest

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, code int, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(e)
}

func OK(w http.ResponseWriter, code int, data any) {
	write(w, code, envelope{Success: true, Data: data})
}

func Message(w http.ResponseWriter, code int, msg string) {
	write(w, code, envelope{Success: true, Message: msg})
}

func Error(w http.ResponseWriter, code int, msg string) {
	write(w, code, envelope{Success: false, Message: msg})
}

func ValidationError(w http.ResponseWriter, errs []string) {
	write(w, http.StatusBadRequest, envelope{Success: false, Message: "validation failed", Errors: errs})
}

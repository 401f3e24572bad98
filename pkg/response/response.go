// Package response writes the JSON envelopes shared by every endpoint:
// {"success": true, "data": ...} or {"success": false, "error": CODE, "message": ...}.
package response

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	Data(w, http.StatusOK, data)
}

// Created answers a successful insert with 201.
func Created(w http.ResponseWriter, data any) {
	Data(w, http.StatusCreated, data)
}

func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	ErrorWith(w, status, code, message, nil)
}

// ErrorWith adds extra top-level keys to the error envelope. The envelope's
// own keys win over extras.
func ErrorWith(w http.ResponseWriter, status int, code string, message string, extra map[string]any) {
	body := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		body[k] = v
	}
	body["success"] = false
	body["error"] = code
	body["message"] = message
	JSON(w, status, body)
}

// Validation reports a rejected input field with 400 VALIDATION_ERROR.
func Validation(w http.ResponseWriter, field string, message string) {
	ErrorWith(w, http.StatusBadRequest, "VALIDATION_ERROR", message, map[string]any{"field": field})
}

// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// envelope is the success wrapper expected by the admin UI.
type envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a success envelope around data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// OKPaged sends a success envelope around data with pagination metadata.
func OKPaged(w http.ResponseWriter, data any, pagination any) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: pagination})
}

// OKMessage sends a success envelope carrying only a message.
func OKMessage(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

package utils

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
	Token      string `json:"token,omitempty"`
	Error      string `json:"error,omitempty"`
}

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope; resp.Success is forced to true
func WriteSuccess(w http.ResponseWriter, status int, resp Response) {
	resp.Success = true
	resp.Error = ""
	WriteJSON(w, status, resp)
}

// WriteData is WriteSuccess for the common data-plus-message case
func WriteData(w http.ResponseWriter, status int, data any, message string) {
	WriteSuccess(w, status, Response{Data: data, Message: message})
}

// WriteList writes data with its element count
func WriteList(w http.ResponseWriter, data any, count int) {
	WriteSuccess(w, http.StatusOK, Response{Data: data, Count: &count})
}

// WriteError writes the failure envelope for err
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusCode(err), Response{Success: false, Error: PublicMessage(err)})
}

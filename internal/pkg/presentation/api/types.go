package api

import (
	"encoding/json"
	"net/http"
)

type meta struct {
	Section string `json:"section,omitempty"`
	Status  string `json:"status,omitempty"`
}

type ApiResponse struct {
	Meta    *meta  `json:"meta,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ApiResponse) Byte() []byte {
	b, _ := json.Marshal(r)
	return b
}

func writeJSON(w http.ResponseWriter, status int, response ApiResponse) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response.Byte())
}

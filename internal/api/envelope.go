// Package api holds the JSON envelopes and headers shared by every
// response the service writes.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// SearchResponse is the success envelope of the places proxy.
type SearchResponse struct {
	Status        string   `json:"status"`
	Results       any      `json:"results"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
	Metadata      Metadata `json:"metadata"`
}

// Metadata describes the query a response was produced for.
type Metadata struct {
	Query       *QueryInfo `json:"query,omitempty"`
	Timestamp   string     `json:"timestamp"`
	ResultCount int        `json:"resultCount"`
}

// QueryInfo is the canonicalized query echoed back to clients.
type QueryInfo struct {
	Location string `json:"location"`
	Radius   int    `json:"radius"`
	Type     string `json:"type"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// Timestamp formats t the way every envelope reports time.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// SetCORSHeaders applies the fixed header set carried by every proxy response.
func SetCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Content-Type", "application/json")
}

// WriteJSON writes v with the CORS header set and the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	SetCORSHeaders(w)
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, message string, details any) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// WriteInternalError writes the 500 envelope. The fault detail is only
// exposed when development is true.
func WriteInternalError(w http.ResponseWriter, detail string, development bool) {
	message := "An unexpected error occurred"
	if development && detail != "" {
		message = detail
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Message: message,
	})
}

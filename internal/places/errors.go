package places

import (
	"fmt"
	"net/http"
)

// Kind classifies a proxy failure. Each kind maps to exactly one HTTP status.
type Kind int

const (
	KindClientInput Kind = iota
	KindMethodNotAllowed
	KindConfiguration
	KindUpstreamTransport
	KindUpstreamSemantic
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindConfiguration:
		return "configuration"
	case KindUpstreamTransport:
		return "upstream_transport"
	case KindUpstreamSemantic:
		return "upstream_semantic"
	default:
		return "internal"
	}
}

// Error is the tagged error returned by every step of the proxy pipeline.
// Message is safe to show to clients; Err is the underlying cause and is
// only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status the error is reported with.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindClientInput:
		return http.StatusBadRequest
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindUpstreamTransport, KindUpstreamSemantic:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func clientError(message string) *Error {
	return &Error{Kind: KindClientInput, Message: message}
}

// Client-facing messages.
const (
	MsgMethodNotAllowed = "Method not allowed. Use GET."
	MsgMissingAPIKey    = "Server configuration error. API key not found."
	MsgMissingQuery     = "Missing query parameters. Required: lat, lng, radius"
	MsgMissingParams    = "Missing required parameters. Required: lat, lng, radius"
	MsgInvalidFormat    = "Invalid parameter format. lat and lng must be numbers, radius must be an integer."
	MsgInvalidLatitude  = "Invalid latitude. Must be between -90 and 90."
	MsgInvalidLongitude = "Invalid longitude. Must be between -180 and 180."
	MsgInvalidRadius    = "Invalid radius. Must be between 1 and 50000 meters."
	MsgQuotaExceeded    = "API quota exceeded. Please try again later."
	MsgRequestDenied    = "API request denied. Please check API key configuration."
	MsgInvalidRequest   = "Invalid request parameters."
	MsgInternal         = "Internal server error"
	MsgUnexpected       = "An unexpected error occurred"
	upstreamName        = "Google Places"
)

// ErrMethodNotAllowed is reported for anything other than GET or OPTIONS.
var ErrMethodNotAllowed = &Error{Kind: KindMethodNotAllowed, Message: MsgMethodNotAllowed}

// ErrMissingAPIKey is a deployment fault. It must not be retried.
var ErrMissingAPIKey = &Error{Kind: KindConfiguration, Message: MsgMissingAPIKey}

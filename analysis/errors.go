package analysis

import (
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure so the HTTP boundary can map it to a
// status code without inspecting messages.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnsupportedFormat
	KindUpstreamFailure
	KindParseFailure
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindParseFailure:
		return "parse_failure"
	default:
		return "internal_error"
	}
}

// Error is the tagged failure every pipeline stage returns. The Cause is
// kept for logs only and never serialized to the client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the failure taxonomy to response codes. Caller faults are
// 4xx, dependency faults 5xx.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest, KindUnsupportedFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(message string, cause error) *Error {
	return &Error{Kind: KindBadRequest, Message: message, Cause: cause}
}

func unsupportedFormat(message string, cause error) *Error {
	return &Error{Kind: KindUnsupportedFormat, Message: message, Cause: cause}
}

func upstreamFailure(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: message, Cause: cause}
}

func parseFailure(message string, cause error) *Error {
	return &Error{Kind: KindParseFailure, Message: message, Cause: cause}
}

package llm

import (
	"fmt"
)

type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindAuthDenied     ErrorKind = "auth_denied"
	KindRateLimited    ErrorKind = "rate_limited"
	KindEmptyResponse  ErrorKind = "empty_response"
	KindNetwork        ErrorKind = "network_failure"
	KindUnknown        ErrorKind = "unknown"
)

// ProviderError is a classified failure from a provider call. Message is
// user-safe: it never carries the API key or a raw provider payload.
type ProviderError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ErrMissingEndpoint is raised for provider=custom without an endpoint,
// before any network I/O happens.
var ErrMissingEndpoint = fmt.Errorf("custom provider requires an endpoint URL")

func classifyStatus(status int, providerMessage string) *ProviderError {
	switch {
	case status == 400:
		return &ProviderError{Kind: KindInvalidRequest, Status: status,
			Message: "Invalid API request. Please check your configuration."}
	case status == 401 || status == 403:
		return &ProviderError{Kind: KindAuthDenied, Status: status,
			Message: "API key access denied. Please verify your API key."}
	case status == 429:
		return &ProviderError{Kind: KindRateLimited, Status: status,
			Message: "API rate limit exceeded. Please try again later."}
	default:
		msg := providerMessage
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return &ProviderError{Kind: KindUnknown, Status: status,
			Message: fmt.Sprintf("API error: %s", msg)}
	}
}

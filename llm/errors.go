package llm

import "fmt"

// ClientError is the base error type for all llm errors.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by a completion endpoint.
type ProviderError struct {
	ClientError
	Provider   string
	StatusCode int
	Retryable  bool
	RetryAfter *float64
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Concrete provider error types.

type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type NotFoundError struct{ ProviderError }
type InvalidRequestError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ServerError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }

// Non-provider errors.

type RequestTimeoutError struct{ ClientError }
type AbortError struct{ ClientError }
type NetworkError struct{ ClientError }
type ConfigurationError struct{ ClientError }

// ErrorFromStatusCode maps an HTTP status code to the appropriate error type.
func ErrorFromStatusCode(statusCode int, message, provider string, retryAfter *float64) error {
	pe := ProviderError{
		ClientError: ClientError{Message: message},
		Provider:    provider,
		StatusCode:  statusCode,
		RetryAfter:  retryAfter,
	}

	switch statusCode {
	case 400, 422:
		pe.Retryable = false
		return &InvalidRequestError{ProviderError: pe}
	case 401:
		pe.Retryable = false
		return &AuthenticationError{ProviderError: pe}
	case 403:
		pe.Retryable = false
		return &AccessDeniedError{ProviderError: pe}
	case 404:
		pe.Retryable = false
		return &NotFoundError{ProviderError: pe}
	case 408:
		return &RequestTimeoutError{ClientError: ClientError{Message: message}}
	case 413:
		pe.Retryable = false
		return &ContextLengthError{ProviderError: pe}
	case 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case 500, 502, 503, 504:
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	default:
		// Unknown status codes default to retryable.
		pe.Retryable = true
		return &pe
	}
}

// IsRetryable returns true if the error is safe to retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *ProviderError:
		return e.Retryable
	case *AuthenticationError:
		return false
	case *AccessDeniedError:
		return false
	case *NotFoundError:
		return false
	case *InvalidRequestError:
		return false
	case *ContextLengthError:
		return false
	case *ConfigurationError:
		return false
	case *AbortError:
		return false
	case *RateLimitError:
		return true
	case *ServerError:
		return true
	case *NetworkError:
		return true
	case *RequestTimeoutError:
		return true
	default:
		// Unknown errors default to retryable.
		return true
	}
}

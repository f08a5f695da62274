package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of a runtime failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the runtime did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the runtime address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the runtime hostname could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-success HTTP status
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body or frame
	ErrTypeParse
	// ErrTypeStream indicates the runtime reported a failure mid-stream or the stream broke
	ErrTypeStream
	// ErrTypeNotFound indicates the requested model does not exist
	ErrTypeNotFound
	// ErrTypeCancelled indicates the caller cancelled the operation
	ErrTypeCancelled
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeStream:
		return "Stream Error"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeCancelled:
		return "Cancelled"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by Client for every failed runtime call
type Error struct {
	Type       ErrorType // Category of error
	Op         string    // Operation that failed (e.g. "list_models")
	Message    string    // Human-readable message
	StatusCode int       // HTTP status code (if applicable)
	Endpoint   string    // Runtime base URL (for hints)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the call may succeed if repeated
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport error onto the runtime error taxonomy
func ClassifyNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Type: ErrTypeCancelled, Message: "operation cancelled", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &Error{Type: ErrTypeTimeout, Message: "runtime did not respond in time", Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("could not resolve %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{Type: ErrTypeConnectionRefused, Message: "runtime refused connection", Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{Type: ErrTypeNetwork, Message: "runtime host unreachable", Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{Type: ErrTypeNetwork, Message: "network unreachable", Err: err, Retryable: true}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &Error{Type: ErrTypeNetwork, Message: "network error occurred", Err: err, Retryable: true}
}

// NewNetworkError classifies err and attaches the operation context
func NewNetworkError(op, message string, err error) *Error {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		classified = &Error{Type: ErrTypeNetwork, Retryable: true}
	}
	classified.Op = op
	if classified.Type == ErrTypeNetwork && message != "" {
		classified.Message = message
	}
	return classified
}

// NewHTTPError creates an HTTP-level error; 5xx responses are retryable
func NewHTTPError(op string, statusCode int, message string) *Error {
	if statusCode == http.StatusNotFound {
		return NewNotFoundError(op, message)
	}
	return &Error{
		Type:       ErrTypeHTTP,
		Op:         op,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

// NewParseError creates a parsing error
func NewParseError(op, message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Op: op, Message: message, Err: err}
}

// NewStreamError creates an error for a failed or broken stream
func NewStreamError(op, message string) *Error {
	return &Error{Type: ErrTypeStream, Op: op, Message: message}
}

// NewNotFoundError creates an error for an unknown model
func NewNotFoundError(op, message string) *Error {
	return &Error{Type: ErrTypeNotFound, Op: op, Message: message, StatusCode: http.StatusNotFound}
}

func typeOf(err error) (ErrorType, bool) {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Type, true
	}
	return ErrTypeUnknown, false
}

// IsNetworkError reports whether err is a transport failure (timeout, refused, DNS included)
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsNotFound reports whether err means the model does not exist
func IsNotFound(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeNotFound
}

// IsCancelled reports whether err came from caller cancellation
func IsCancelled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	t, ok := typeOf(err)
	return ok && t == ErrTypeCancelled
}

// IsTimeout reports whether err came from a deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	t, ok := typeOf(err)
	return ok && t == ErrTypeTimeout
}

// IsRetryable reports whether a call that failed with err may be repeated
func IsRetryable(err error) bool {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Retryable
	}
	return false
}

// ShortMessage returns a concise reason suitable for a status line
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	var rtErr *Error
	if !errors.As(err, &rtErr) {
		return err.Error()
	}
	switch rtErr.Type {
	case ErrTypeHTTP:
		if rtErr.Message != "" {
			return fmt.Sprintf("%s (HTTP %d)", rtErr.Message, rtErr.StatusCode)
		}
		return fmt.Sprintf("runtime returned HTTP %d", rtErr.StatusCode)
	case ErrTypeCancelled:
		return "cancelled"
	default:
		if rtErr.Message != "" {
			return rtErr.Message
		}
		return rtErr.Type.String()
	}
}

// TroubleshootingHints returns user-facing advice for a failed runtime call
func TroubleshootingHints(err error) []string {
	var rtErr *Error
	if !errors.As(err, &rtErr) {
		return nil
	}

	switch rtErr.Type {
	case ErrTypeConnectionRefused:
		return []string{
			"Check that the model runtime is running (quotegen-runtime serve)",
			"Verify the address with --runtime or QUOTEGEN_RUNTIME",
			"Run 'quotegen config show' to see the configured address",
		}
	case ErrTypeTimeout:
		return []string{
			"The runtime may still be loading a large model; try again shortly",
			"Increase generation.timeout_seconds in the config file",
		}
	case ErrTypeDNS:
		return []string{
			"Use an IP address instead of a hostname",
			"Run 'quotegen discover' to find runtimes on the local network",
		}
	case ErrTypeNetwork:
		return []string{
			"Check your network connection",
			"Run 'quotegen discover' to find runtimes on the local network",
		}
	case ErrTypeNotFound:
		return []string{
			"Run 'quotegen models' to list the models the runtime offers",
		}
	case ErrTypeHTTP:
		if rtErr.StatusCode == http.StatusConflict {
			return []string{"Download the model before loading it: quotegen download <id>"}
		}
		if rtErr.StatusCode >= 500 {
			return []string{"The runtime reported an internal error; check its logs"}
		}
		return nil
	case ErrTypeParse, ErrTypeStream:
		return []string{
			"The runtime may be an incompatible version",
			"Re-run with --log-level debug to see the raw exchange",
		}
	default:
		return nil
	}
}

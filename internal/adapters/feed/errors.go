package feed

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the client matches exactly one of
// these through errors.Is.
var (
	ErrTransport  = errors.New("feed transport failure")
	ErrHTTPStatus = errors.New("feed returned non-success status")
	ErrDecode     = errors.New("feed payload could not be decoded")
)

// TransportError is a network, DNS or TLS failure before a response arrived.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// HTTPError is any non-200 response.
type HTTPError struct {
	Path       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d", e.Path, e.StatusCode)
}

// Is matches ErrHTTPStatus.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTPStatus }

// DecodeError is a body that is not JSON or not the expected shape.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s: malformed JSON", e.Path)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Kind names the error kind for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "other"
	}
}

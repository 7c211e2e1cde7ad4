package api

import (
	"errors"
	"net/http"

	"github.com/okian/medalboard/internal/adapters/feed"
	service "github.com/okian/medalboard/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrBadForce   = errors.New("force must be a boolean")
	ErrBadMedal   = errors.New("medal must be GOLD, SILVER or BRONZE")
)

// statusFor maps an error to its HTTP status: bad input is 400, an
// upstream feed failure 502, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrDateOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, feed.ErrTransport),
		errors.Is(err, feed.ErrHTTPStatus),
		errors.Is(err, feed.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

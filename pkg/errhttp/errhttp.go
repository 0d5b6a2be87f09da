// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/lendingdesk/pkg/auth"
	"github.com/ghuser/lendingdesk/pkg/httpx"
	lendingdomain "github.com/ghuser/lendingdesk/services/lending/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors, whose
// message is replaced by the status text.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, true))
}

// Status returns the HTTP status WriteError would use for err.
func Status(err error) int {
	return mapErrorToStatus(err)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrPrincipalNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, lendingdomain.ErrItemNotFound),
		errors.Is(err, lendingdomain.ErrBorrowNotFound),
		errors.Is(err, lendingdomain.ErrPenaltyNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, lendingdomain.ErrDuplicateSerial),
		errors.Is(err, lendingdomain.ErrInsufficientStock),
		errors.Is(err, lendingdomain.ErrInvalidTransition),
		errors.Is(err, lendingdomain.ErrNotActive),
		errors.Is(err, lendingdomain.ErrItemInUse):
		return http.StatusConflict // 409
	case errors.Is(err, lendingdomain.ErrInvalidItem),
		errors.Is(err, lendingdomain.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}

package clinicerr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a taxonomy error to the HTTP status handlers return
// for it. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyDecided):
		return http.StatusConflict
	case errors.Is(err, ErrMissingComment):
		return http.StatusBadRequest
	default:
		var de *DependencyError
		if errors.As(err, &de) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

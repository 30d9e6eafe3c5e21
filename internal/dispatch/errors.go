package dispatch

import "errors"

// Domain errors for the dispatch package.
var (
	// ErrRouteNotFound corresponds to a simulated 404.
	ErrRouteNotFound = errors.New("dispatch: route not found")

	// ErrBadRequest corresponds to a simulated 4xx caused by malformed request data.
	ErrBadRequest = errors.New("dispatch: bad request")

	// ErrServerError corresponds to a simulated 5xx.
	ErrServerError = errors.New("dispatch: server error")
)

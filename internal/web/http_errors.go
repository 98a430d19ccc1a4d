package web

import (
	"errors"
	"net/http"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
)

// httpStatusFromErr maps domain errors to an HTTP status and a stable
// machine-readable code. Nothing here is fatal: every failure degrades to
// a response the client can recover from.
func httpStatusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, cartapp.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, cartapp.ErrInvalidQuantity):
		return http.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, cartapp.ErrInvalidInput), errors.Is(err, catalogapp.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, catalogapp.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, cartapp.ErrRemovalFailed):
		return http.StatusBadGateway, "REMOVAL_FAILED"
	case errors.Is(err, cartapp.ErrRemoteCall):
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

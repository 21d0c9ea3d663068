// Package handler exposes the HTTP handlers of the pricing API: public
// quote, calendar and market endpoints, and owner-scoped endpoints that
// price a stored listing.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-pricing/internal/middleware"
	"github.com/iliyamo/rental-pricing/internal/pricing"
	"github.com/iliyamo/rental-pricing/internal/repository"
)

// errBadQuery marks malformed query or path parameters.
var errBadQuery = errors.New("bad request")

// writeError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and reported without detail.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errBadQuery), errors.Is(err, pricing.ErrInvalidPricingInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, pricing.ErrUnknownAreaTag):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrPropertyNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// getUserID extracts the user_id stored by JWTAuth and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		return t, nil
	case int:
		if t >= 0 {
			return uint64(t), nil
		}
	case int64:
		if t >= 0 {
			return uint64(t), nil
		}
	case float64: // numeric JSON claims decode as float64
		if t >= 0 && t == float64(uint64(t)) {
			return uint64(t), nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadQuery, name)
	}
	return id, nil
}

// queryInt reads an integer parameter, returning def when it is absent and
// an error when it is present but outside [min, max].
func queryInt(c echo.Context, name string, def, min, max int) (int, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadQuery, name)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", errBadQuery, name, min, max)
	}
	return n, nil
}

// queryFloat reads a float parameter. ok is false when it is absent.
func queryFloat(c echo.Context, name string) (v float64, ok bool, err error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s must be a number", errBadQuery, name)
	}
	return v, true, nil
}

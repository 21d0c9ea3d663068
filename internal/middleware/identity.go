package middleware

// identity.go holds the helpers that turn JWT claims stored in the Echo
// context into stable identifiers. JSON numbers decode as float64, so a
// numeric "sub" claim arrives that way and is normalised here.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// subject returns the authenticated user as a string key, or "anon" when the
// request carries no identity.
func subject(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return "anon"
}

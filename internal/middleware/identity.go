package middleware

import "github.com/labstack/echo/v4"

// userID returns the authenticated username, or "anon" when JWTAuth has
// not run for this route.
func userID(c echo.Context) string {
	if s, ok := c.Get(CtxUsername).(string); ok && s != "" {
		return s
	}
	return "anon"
}

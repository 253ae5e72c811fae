package middleware

import "github.com/labstack/echo/v4"

// userID returns the username stored by RequireSession, or "anon" on routes
// that run before or without it.  Rate-limit and cache keys use it.
func userID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}

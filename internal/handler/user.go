package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kodbank/internal/middleware"
)

// UserHandler serves the session-gated account reads.  Both routes expect
// middleware.RequireSession to have loaded the account.
type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

// Balance returns the stored DECIMAL balance as a JSON number without going
// through float64.
func (h *UserHandler) Balance(c echo.Context) error {
	acct, ok := middleware.AccountFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": json.Number(acct.Balance)})
}

func (h *UserHandler) Profile(c echo.Context) error {
	acct, ok := middleware.AccountFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"username": acct.Username,
		"email":    acct.Email,
		"role":     acct.Role,
	})
}

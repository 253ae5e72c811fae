package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kodbank/internal/model"
	"github.com/iliyamo/kodbank/internal/repository"
	"github.com/iliyamo/kodbank/internal/utils"
)

// SessionCookie is the cookie that carries the signed session token.
const SessionCookie = "token"

// Context keys set by RequireSession.
const (
	CtxAccount = "account"
	CtxUserID  = "user_id"
)

// RequireSession authenticates a request from its session cookie.  The token
// must verify, name an existing account and match a live session row issued
// to that account.  On success the account is stored under CtxAccount and its
// username under CtxUserID.
func RequireSession(tokens *utils.TokenIssuer, accounts *repository.AccountRepo, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(SessionCookie)
			if err != nil || ck.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			claims, ok := tokens.Verify(ck.Value)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			acct, err := accounts.GetByUsername(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
				}
				log.Printf("[session] account lookup failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
			}

			if err := sessions.Validate(ctx, utils.HashToken(ck.Value), acct.ID); err != nil {
				if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrSessionExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
				}
				log.Printf("[session] session lookup failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
			}

			c.Set(CtxAccount, acct)
			c.Set(CtxUserID, acct.Username)
			return next(c)
		}
	}
}

// AccountFrom returns the account stored by RequireSession.
func AccountFrom(c echo.Context) (model.Account, bool) {
	a, ok := c.Get(CtxAccount).(model.Account)
	return a, ok
}

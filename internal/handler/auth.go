package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kodbank/internal/config"
	"github.com/iliyamo/kodbank/internal/middleware"
	"github.com/iliyamo/kodbank/internal/model"
	"github.com/iliyamo/kodbank/internal/queue"
	"github.com/iliyamo/kodbank/internal/repository"
	"github.com/iliyamo/kodbank/internal/service"
	"github.com/iliyamo/kodbank/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts *repository.AccountRepo
	Sessions *repository.SessionRepo
	Tokens   *utils.TokenIssuer
	Hasher   utils.Hasher
	Events   service.EventPublisher
}

func NewAuthHandler(cfg config.Config, a *repository.AccountRepo, s *repository.SessionRepo, t *utils.TokenIssuer, h utils.Hasher, ev service.EventPublisher) *AuthHandler {
	if ev == nil {
		ev = service.NopPublisher{}
	}
	return &AuthHandler{Cfg: cfg, Accounts: a, Sessions: s, Tokens: t, Hasher: h, Events: ev}
}

// ----- DTOs -----

type registerReq struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`

	// Sent by the web client and ignored: every account starts as a customer.
	Role string          `json:"role"`
	UID  json.RawMessage `json:"uid"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a customer account with the starting balance.  No session
// is issued; the client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindStrict(c, &req); err != nil {
		return badBody(c)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
	}

	digest, err := h.Hasher.Hash(req.Password)
	if err != nil {
		log.Printf("[auth] hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct := model.Account{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: digest,
		Role:         model.RoleCustomer,
	}
	id, err := h.Accounts.Create(ctx, acct)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists"})
		}
		log.Printf("[auth] register %q: %v", req.Username, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	acct.ID = id

	h.publish(c, service.NewAccountEvent(queue.EventAccountRegistered, acct))
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// Login verifies credentials, records a session row and sets the session
// cookie.  Unknown usernames and wrong passwords get the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindStrict(c, &req); err != nil {
		return badBody(c)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing credentials"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		log.Printf("[auth] login lookup %q: %v", req.Username, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	if !h.Hasher.Verify(acct.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	tok, err := h.Tokens.Issue(utils.Claims{Subject: acct.Username, Role: string(acct.Role)})
	if err != nil {
		log.Printf("[auth] issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	if err := h.Sessions.Store(ctx, acct.ID, utils.HashToken(tok.Token), tok.Exp); err != nil {
		log.Printf("[auth] store session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.Tokens.TTL() / time.Second),
		Expires:  tok.Exp,
	})

	h.publish(c, service.NewAccountEvent(queue.EventSessionIssued, acct))
	return c.JSON(http.StatusOK, echo.Map{"message": "Login successful"})
}

// publish is best effort: a broker failure is logged and never surfaces to
// the client.
func (h *AuthHandler) publish(c echo.Context, ev queue.AccountEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 3*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, ev); err != nil {
		log.Printf("[events] drop %s for %q: %v", ev.Type, ev.Username, err)
	}
}

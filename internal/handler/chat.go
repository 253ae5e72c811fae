package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kodbank/internal/service"
)

// ChatHandler proxies conversations to the hosted model.
type ChatHandler struct {
	Client *service.ChatClient
}

func NewChatHandler(c *service.ChatClient) *ChatHandler { return &ChatHandler{Client: c} }

type chatReq struct {
	Messages []service.ChatMessage `json:"messages"`
}

var chatRoles = map[string]bool{"user": true, "assistant": true, "system": true}

// Chat returns {reply}.  The system prompt is added by the client, so callers
// send only the conversation so far.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req chatReq
	if err := bindStrict(c, &req); err != nil {
		return badBody(c)
	}
	if !h.Client.Configured() {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "HuggingFace API key not configured"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "messages must not be empty"})
	}
	for _, m := range req.Messages {
		if !chatRoles[m.Role] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message role"})
		}
	}

	reply, err := h.Client.Complete(c.Request().Context(), req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatNotConfigured):
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "HuggingFace API key not configured"})
		case errors.Is(err, service.ErrUpstream):
			log.Printf("[chat] %v", err)
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "AI service unavailable. Please try again."})
		}
		log.Printf("[chat] %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

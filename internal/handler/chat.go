package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/model"
	"github.com/iliyamo/telehealth-core/internal/service"
)

// ChatHandler serves the session, messaging and video endpoints.  Every
// route acts on the session named by the access token.
type ChatHandler struct {
	Svc *service.Service
	Log *slog.Logger
}

func NewChatHandler(svc *service.Service, log *slog.Logger) *ChatHandler {
	return &ChatHandler{Svc: svc, Log: log}
}

type peerReq struct {
	Peer string `json:"peer"`
}
type modeReq struct {
	Mode string `json:"mode"` // web | video
}
type messageReq struct {
	Body string `json:"body"`
}

// SetPeer selects the chat partner.
func (h *ChatHandler) SetPeer(c echo.Context) error {
	var req peerReq
	if err := c.Bind(&req); err != nil || req.Peer == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "peer required"})
	}
	sess, err := h.Svc.SetPeer(c.Request().Context(), sessionID(c), req.Peer)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// SetMode switches between web chat and video.
func (h *ChatHandler) SetMode(c echo.Context) error {
	var req modeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sess, err := h.Svc.SetChatMode(sessionID(c), model.ChatMode(req.Mode))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Send posts a message to the current peer.
func (h *ChatHandler) Send(c echo.Context) error {
	var req messageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	msg, err := h.Svc.SendMessage(c.Request().Context(), sessionID(c), req.Body)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// History returns the conversation with the current peer, oldest first.
func (h *ChatHandler) History(c echo.Context) error {
	msgs, err := h.Svc.GetHistory(c.Request().Context(), sessionID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// Inbox returns System notices for the caller.
func (h *ChatHandler) Inbox(c echo.Context) error {
	msgs, err := h.Svc.Inbox(c.Request().Context(), sessionID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// StartVideo starts a call with the current peer.
func (h *ChatHandler) StartVideo(c echo.Context) error {
	call, err := h.Svc.StartVideoCall(c.Request().Context(), sessionID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, call)
}

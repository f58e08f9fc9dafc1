package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/handler"
	"github.com/iliyamo/telehealth-core/internal/middleware"
)

// RegisterChat registers session, messaging and video endpoints.  Any
// role may use them; who may talk to whom is decided when the peer is
// selected.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit)
	g.PUT("/session/peer", h.SetPeer)
	g.PUT("/session/mode", h.SetMode)

	g.POST("/messages", h.Send)
	g.GET("/messages", h.History)
	g.GET("/inbox", h.Inbox)

	g.POST("/video", h.StartVideo)
}

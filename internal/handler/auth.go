package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/config"
	"github.com/iliyamo/telehealth-core/internal/middleware"
	"github.com/iliyamo/telehealth-core/internal/model"
	"github.com/iliyamo/telehealth-core/internal/service"
	"github.com/iliyamo/telehealth-core/internal/utils"
)

// AuthHandler bundles dependencies for auth and presence endpoints.
type AuthHandler struct {
	Cfg config.Config
	Svc *service.Service
	Log *slog.Logger
}

func NewAuthHandler(cfg config.Config, svc *service.Service, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Svc: svc, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // Doctor | Patient | CommunityHealthWorker (aliases accepted)
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}
type authResp struct {
	User    userPart      `json:"user"`
	Session model.Session `json:"session"`
	Access  tokenPart     `json:"access"`
}

// Register creates an account.  It does not log the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	if err := h.Svc.Register(c.Request().Context(), req.Username, req.Password, role); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, userPart{Username: req.Username, Role: role})
}

// Login authenticates, binds a session and returns an access token that
// carries the session id.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	acc, sess, err := h.Svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{
		Username:  acc.Username,
		Role:      string(acc.Role),
		SessionID: sess.ID,
	}, h.Cfg.AccessTTL())
	if err != nil {
		_ = h.Svc.EndSession(c.Request().Context(), sess.ID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{Username: acc.Username, Role: acc.Role},
		Session: sess,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout ends the caller's session and clears presence.  Repeating it is
// harmless.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Svc.EndSession(c.Request().Context(), sessionID(c)); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's session.
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := h.Svc.Session(sessionID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Presence lists logged-in users of the role in the path.
func (h *AuthHandler) Presence(c echo.Context) error {
	role, ok := model.ParseRole(c.Param("role"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	names, err := h.Svc.ListPresent(c.Request().Context(), role)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role, "users": names})
}

func sessionID(c echo.Context) string {
	sid, _ := c.Get(middleware.CtxSessionID).(string)
	return sid
}

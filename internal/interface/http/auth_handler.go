package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/application/state"
	"github.com/oksasatya/medication-reminder/internal/container"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
	"github.com/oksasatya/medication-reminder/internal/session"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
	"github.com/oksasatya/medication-reminder/pkg/response"
	"github.com/oksasatya/medication-reminder/pkg/validation"
)

type AuthHandler struct {
	C       *container.Container
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(c *container.Container) *AuthHandler {
	return &AuthHandler{
		C:       c,
		Logger:  c.Logger,
		Cookies: helpers.NewCookie(c.Config.CookieDomain, c.Config.CookieSecure),
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email     string   `json:"email" binding:"required"`
	Password  string   `json:"password" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
}

func (h *AuthHandler) authState(c *gin.Context) (*state.AuthState, bool) {
	ucs, err := h.C.UserUseCases()
	if err != nil {
		fail(c, h.Logger, err, "user backend unavailable")
		return nil, false
	}
	return state.NewAuthState(ucs,
		state.WithAuthLogger(h.Logger),
		state.WithLocationSyncTimeout(h.C.Config.LocationSyncTimeout),
	), true
}

// startSession turns the session the repository put in the holder into
// cookies. It returns the token expiries for the response meta.
func (h *AuthHandler) startSession(c *gin.Context) (map[string]any, bool) {
	cur := middleware.Holder(c).Get()
	sess, err := h.C.Sessions.Issue(c.Request.Context(), cur)
	if err != nil {
		fail(c, h.Logger, err, "could not start session")
		return nil, false
	}
	middleware.Holder(c).Set(sess)
	c.Set(middleware.CtxUserIDKey, sess.UserID)
	h.Cookies.SetPair(c, sess.AccessToken, sess.ExpiresAt, sess.RefreshToken, sess.RefreshExpiresAt)
	return map[string]any{
		"access_expires_at":  sess.ExpiresAt,
		"refresh_expires_at": sess.RefreshExpiresAt,
	}, true
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	st, ok := h.authState(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	res := st.Register(ctx, req.Name, req.Email, req.Password)
	if !res.Success {
		status := http.StatusBadRequest
		switch res.Error {
		case state.MsgEmailAlreadyRegistered:
			status = http.StatusConflict
		case state.MsgRegistrationFailed:
			status = http.StatusInternalServerError
		}
		response.Error[any](c, status, res.Error, nil)
		return
	}

	view, err := st.Refresh(ctx)
	if err != nil || view == nil {
		// the account exists; the client can sign in explicitly
		response.Success(c, http.StatusCreated, res, "registered", nil)
		return
	}
	meta, ok := h.startSession(c)
	if !ok {
		return
	}
	h.C.Notifier.Welcome(ctx, view.Name, view.Email)
	response.Success(c, http.StatusCreated, view, "registered", meta)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	st, ok := h.authState(c)
	if !ok {
		return
	}
	var coords *state.Coordinates
	if req.Latitude != nil && req.Longitude != nil {
		coords = &state.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	ok, err := st.Login(c.Request.Context(), req.Email, req.Password, coords)
	if err != nil {
		fail(c, h.Logger, err, "login failed")
		return
	}
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	meta, ok := h.startSession(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, st.Current(), "login successful", meta)
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := middleware.RefreshToken(c)
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	sess, err := h.C.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, sess.AccessToken, sess.ExpiresAt, sess.RefreshToken, sess.RefreshExpiresAt)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed",
		map[string]any{"access_expires_at": sess.ExpiresAt, "refresh_expires_at": sess.RefreshExpiresAt})
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	st, ok := h.authState(c)
	if !ok {
		return
	}
	prev := middleware.Holder(c).Get()
	if err := st.Logout(c.Request.Context()); err != nil {
		h.Logger.WithError(err).Warn("sign out failed")
	}
	h.revoke(c, prev)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *AuthHandler) revoke(c *gin.Context, prev *session.Session) {
	if prev != nil {
		if err := h.C.Sessions.Revoke(c.Request.Context(), prev); err != nil {
			h.Logger.WithError(err).WithField("user_id", prev.UserID).Warn("revoke session failed")
		}
	}
	h.Cookies.Clear(c)
}

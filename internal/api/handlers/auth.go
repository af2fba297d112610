package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wonny/stockpulse/internal/api/middleware"
	"github.com/wonny/stockpulse/internal/api/response"
	"github.com/wonny/stockpulse/internal/service/session"
)

const callbackPath = "/auth/callback"

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	sessions    *session.Service
	redirectURL string // configured callback; derived from the request when empty
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *session.Service, redirectURL string) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions,
		redirectURL: redirectURL,
	}
}

// MeResponse describes the signed-in user
type MeResponse struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name,omitempty"`
	Picture     string `json:"picture,omitempty"`
}

// Login redirects to the identity provider
// GET /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.sessions.Available() {
		response.NotFound(c, response.MsgSignInDisabled)
		return
	}

	authURL, err := h.sessions.BeginSignIn(middleware.GetSessionID(c), h.callbackURL(c))
	if err != nil {
		response.InternalError(c, response.MsgSignInFailed, err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback completes sign-in and returns to the dashboard
// GET /auth/callback?state=...&code=...
func (h *AuthHandler) Callback(c *gin.Context) {
	if !h.sessions.Available() {
		response.NotFound(c, response.MsgSignInDisabled)
		return
	}

	if reason := c.Query("error"); reason != "" {
		_ = c.Error(errors.New("provider: " + reason))
		c.Redirect(http.StatusFound, "/")
		return
	}

	_, err := h.sessions.CompleteSignIn(
		c.Request.Context(),
		middleware.GetSessionID(c),
		c.Query("state"),
		c.Query("code"),
		h.callbackURL(c),
	)
	switch {
	case errors.Is(err, session.ErrInvalidState), errors.Is(err, session.ErrNoSession):
		response.Error(c, http.StatusBadRequest, response.MsgSignInFailed, err)
		return
	case err != nil:
		response.Error(c, http.StatusBadGateway, response.MsgSignInFailed, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout signs the user out
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.SignOut(middleware.GetSessionID(c))
	c.Redirect(http.StatusSeeOther, "/")
}

// Me returns the signed-in user
// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.sessions.CurrentUser(middleware.GetSessionID(c))
	if !ok {
		response.Unauthorized(c, response.MsgNotSignedIn)
		return
	}

	response.Success(c, MeResponse{
		Email:       user.Email,
		DisplayName: user.DisplayName(),
		Name:        user.Name,
		Picture:     user.Picture,
	})
}

func (h *AuthHandler) callbackURL(c *gin.Context) string {
	if h.redirectURL != "" {
		return h.redirectURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + callbackPath
}

package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinic/auth/authctx"
	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/server"
	"github.com/kbukum/clinic/validation"
)

// login accepts an OAuth2 password form (username, password) or a JSON
// body (email, password) and answers with the token response.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		req.Email = c.PostForm("username")
		req.Password = c.PostForm("password")
	default:
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperrors.InvalidInput("", "request body must be valid JSON"), "")
			return
		}
	}
	v := validation.New().Required("email", req.Email)
	v.Custom(req.Password != "", "password", "is required")
	if err := v.Err(); err != nil {
		fail(c, err, "")
		return
	}

	cred, err := h.sessions.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, cred)
}

// logout revokes the presented token. Missing, unknown and already revoked
// tokens answer 204; a store failure answers 503 since the session is
// still live.
func (h *Handler) logout(c *gin.Context) {
	ctx := c.Request.Context()
	if token := authctx.Token(ctx); token != "" {
		if err := h.sessions.Revoke(ctx, token); err != nil {
			h.log.WithContext(ctx).Error("logout: revoke failed", logger.ErrorFields("revoke", err))
			server.RespondError(c, apperrors.ServiceUnavailable("session store").WithCause(err))
			return
		}
	}
	server.RespondNoContent(c)
}

// me returns the authenticated principal.
func (h *Handler) me(c *gin.Context) {
	server.RespondOK(c, principal(c))
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/formsauth/simplesecurity/internal/application"
	"github.com/formsauth/simplesecurity/internal/interface/middleware"
	"github.com/formsauth/simplesecurity/pkg/helpers"
	"github.com/formsauth/simplesecurity/pkg/response"
	"github.com/formsauth/simplesecurity/pkg/validation"
)

// AuthHandler exposes the security provider over HTTP. It owns no state of
// its own: the resolved principal lives in the request context, the session
// lives in the ticket cookie.
type AuthHandler struct {
	Provider *application.SecurityProvider
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
}

func NewAuthHandler(provider *application.SecurityProvider, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Provider: provider, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	Remember       bool   `json:"remember"`
	TimeoutMinutes int    `json:"timeout_minutes" binding:"omitempty,gte=1,lte=10080"`
}

type registerRequest struct {
	Username string   `json:"username" binding:"required,username"`
	Password string   `json:"password" binding:"required,pwd"`
	Roles    []string `json:"roles" binding:"omitempty,dive,rolename"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	sess, ok, err := h.Provider.Login(c.Request.Context(), req.Username, req.Password,
		req.Remember, time.Duration(req.TimeoutMinutes)*time.Minute)
	if err != nil {
		h.Logger.WithError(err).Error("login failed against store")
		resp := response.Error[any](c, http.StatusInternalServerError, "login unavailable", nil)
		c.JSON(resp.Status, resp)
		return
	}
	if !ok {
		// Same message whichever field was wrong.
		h.Logger.WithFields(logrus.Fields{"user": req.Username, "ip": clientIP(c)}).Warn("invalid login attempt")
		resp := response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		c.JSON(resp.Status, resp)
		return
	}

	h.Cookies.SetAuth(c, sess.TicketToken, sess.DisplayName, sess.ExpiresAt, sess.Persistent)
	resp := response.Success(c, http.StatusOK, gin.H{
		"user":       sess.Principal.Identity.Name,
		"roles":      sess.Principal.Roles,
		"expires_at": sess.ExpiresAt,
	}, "login successful")
	c.JSON(resp.Status, resp)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, err := h.Provider.Logout()
	if err != nil {
		resp := response.Error[any](c, http.StatusInternalServerError, "logout failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	h.Cookies.Clear(c, sess.TicketToken)
	resp := response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
	c.JSON(resp.Status, resp)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	ok, err := h.Provider.Register(c.Request.Context(), req.Username, req.Password, req.Roles)
	if err != nil {
		h.Logger.WithError(err).Error("register failed against store")
		resp := response.Error[any](c, http.StatusInternalServerError, "registration unavailable", nil)
		c.JSON(resp.Status, resp)
		return
	}
	if !ok {
		resp := response.Error[any](c, http.StatusConflict, "name already registered", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusCreated, gin.H{"user": req.Username}, "user registered")
	c.JSON(resp.Status, resp)
}

// Unregister DELETE /api/auth/users/:name (Administrator only)
func (h *AuthHandler) Unregister(c *gin.Context) {
	name := c.Param("name")
	if err := h.Provider.Unregister(c.Request.Context(), name); err != nil {
		h.Logger.WithError(err).Error("unregister failed against store")
		resp := response.Error[any](c, http.StatusInternalServerError, "unregistration unavailable", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"user": name}, "user unregistered")
	c.JSON(resp.Status, resp)
}

// Me GET /api/auth/me returns the principal resolved for this request.
func (h *AuthHandler) Me(c *gin.Context) {
	pr := middleware.CurrentPrincipal(c)
	resp := response.Success(c, http.StatusOK, gin.H{
		"name":          pr.Identity.Name,
		"authenticated": pr.Identity.Authenticated,
		"roles":         pr.Roles,
	}, "current principal")
	c.JSON(resp.Status, resp)
}

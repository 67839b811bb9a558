package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/formsauth/simplesecurity/internal/interface/http"
	"github.com/formsauth/simplesecurity/internal/interface/middleware"
)

// AuthModule wires the authentication endpoints.
// Public: POST /api/auth/login, POST /api/auth/logout, POST /api/auth/register,
// GET /api/auth/me.
// Administrator only: DELETE /api/auth/users/:name.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/register", m.Handler.Register)
	rg.GET("/auth/me", m.Handler.Me)

	admin := rg.Group("/")
	admin.Use(middleware.RequireRole("Administrator"))
	{
		admin.DELETE("/auth/users/:name", m.Handler.Unregister)
	}
}

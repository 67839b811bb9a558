package router

import (
	"github.com/sirupsen/logrus"

	"github.com/formsauth/simplesecurity/internal/application"
	handlers "github.com/formsauth/simplesecurity/internal/interface/http"
	"github.com/formsauth/simplesecurity/internal/interface/middleware"
	"github.com/formsauth/simplesecurity/internal/router/modules"
	"github.com/formsauth/simplesecurity/pkg/helpers"
)

// Deps carries the explicitly constructed components every module needs.
// The provider instance is passed down rather than looked up through any
// process-wide state.
type Deps struct {
	Provider *application.SecurityProvider
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
}

// InitModules installs the per-request principal resolution hook and
// registers all feature modules. Called once during startup.
func InitModules(r *Registry, deps Deps) {
	r.Use(middleware.RealIP())
	r.Use(middleware.Principal(deps.Provider))

	authHandler := handlers.NewAuthHandler(deps.Provider, deps.Cookies, deps.Logger)
	r.Add(modules.NewAuthModule(authHandler))
}

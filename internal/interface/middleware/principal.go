package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formsauth/simplesecurity/internal/application"
	"github.com/formsauth/simplesecurity/internal/domain/entity"
	"github.com/formsauth/simplesecurity/pkg/helpers"
	"github.com/formsauth/simplesecurity/pkg/response"
)

const principalKey = "principal"

// Principal resolves the caller's identity from the ticket cookie and
// installs it into the Gin context. It runs once per request, before any
// authorization check; handlers always find a principal, anonymous at worst.
func Principal(provider *application.SecurityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.TicketCookieName)
		if err != nil {
			token = ""
		}
		pr, err := provider.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			// Store failure, not a bad ticket: surface it.
			resp := response.Error[any](c, http.StatusInternalServerError, "authentication unavailable", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Set(principalKey, pr)
		if pr.Identity.Authenticated {
			c.Set("userName", pr.Identity.Name)
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal installed by the Principal
// middleware, or the anonymous principal when none is present.
func CurrentPrincipal(c *gin.Context) entity.Principal {
	if v, ok := c.Get(principalKey); ok {
		if pr, ok := v.(entity.Principal); ok {
			return pr
		}
	}
	return entity.Anonymous()
}

// RequireAuthenticated aborts with 401 for anonymous callers.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Identity.Authenticated {
			resp := response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Next()
	}
}

// RequireRole aborts with 401 for anonymous callers and 403 for
// authenticated callers missing the role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pr := CurrentPrincipal(c)
		if !pr.Identity.Authenticated {
			resp := response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		if !pr.IsInRole(role) {
			resp := response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Next()
	}
}

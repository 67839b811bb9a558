package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names: the encrypted ticket (HttpOnly) and the companion
// display-name cookie readable by client-side code.
const (
	TicketCookieName = "auth.ticket"
	UserCookieName   = "auth.user"
)

// CookieManager writes the ticket/display-name cookie pair.
type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookieManager(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetAuth emits the ticket cookie and the display-name cookie with matching
// expiry. When persistent is false both are session cookies and vanish with
// the browsing session even though the ticket itself lives until expires.
func (m *CookieManager) SetAuth(c *gin.Context, token, username string, expires time.Time, persistent bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := 0 // session cookie
	if persistent {
		maxAge = maxAgeFrom(expires)
	}
	c.SetCookie(TicketCookieName, token, maxAge, "/", m.Domain, m.Secure, true)
	c.SetCookie(UserCookieName, username, maxAge, "/", m.Domain, m.Secure, false)
}

// Clear replaces any stored ticket with the already-expired logout token and
// drops the display-name cookie.
func (m *CookieManager) Clear(c *gin.Context, expiredToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TicketCookieName, expiredToken, -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(UserCookieName, "", -1, "/", m.Domain, m.Secure, false)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}

package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsauth/simplesecurity/internal/application"
	"github.com/formsauth/simplesecurity/internal/infrastructure/memory"
	"github.com/formsauth/simplesecurity/pkg/helpers"
)

func testProvider(t *testing.T) *application.SecurityProvider {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := memory.NewCredentialStore(helpers.LegacyHasher{})
	p := application.NewSecurityProvider(store, helpers.NewTicketCodec("test-secret"), logger, time.Hour)
	require.NoError(t, p.Initialize(context.Background(), "pass2app"))
	return p
}

func newEngine(p *application.SecurityProvider, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Principal(p))
	handlers := append(extra, func(c *gin.Context) {
		pr := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"name": pr.Identity.Name, "authenticated": pr.Identity.Authenticated})
	})
	r.GET("/probe", handlers...)
	return r
}

func login(t *testing.T, p *application.SecurityProvider) string {
	t.Helper()
	sess, ok, err := p.Login(context.Background(), "admin", "pass2app", false, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	return sess.TicketToken
}

func TestPrincipal_NoCookieIsAnonymous(t *testing.T) {
	p := testProvider(t)
	r := newEngine(p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestPrincipal_ValidTicketResolves(t *testing.T) {
	p := testProvider(t)
	r := newEngine(p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: helpers.TicketCookieName, Value: login(t, p)})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), `"name":"admin"`)
}

func TestPrincipal_GarbageTicketIsAnonymous(t *testing.T) {
	p := testProvider(t)
	r := newEngine(p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: helpers.TicketCookieName, Value: "garbage"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestRequireAuthenticated(t *testing.T) {
	p := testProvider(t)
	r := newEngine(p, RequireAuthenticated())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: helpers.TicketCookieName, Value: login(t, p)})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	p := testProvider(t)
	ok, err := p.Register(context.Background(), "alice", "pw1-long", []string{"Member"})
	require.NoError(t, err)
	require.True(t, ok)

	r := newEngine(p, RequireRole("Administrator"))

	t.Run("anonymous is 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		sess, ok, err := p.Login(context.Background(), "alice", "pw1-long", false, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.AddCookie(&http.Cookie{Name: helpers.TicketCookieName, Value: sess.TicketToken})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("matching role passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.AddCookie(&http.Cookie{Name: helpers.TicketCookieName, Value: login(t, p)})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCurrentPrincipal_MissingIsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	pr := CurrentPrincipal(c)
	assert.False(t, pr.Identity.Authenticated)
}

func TestRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("real_ip"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Body.String())
	assert.NotEqual(t, "not-an-ip", w.Body.String())
}

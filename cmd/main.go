package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/formsauth/simplesecurity/config"
	"github.com/formsauth/simplesecurity/internal/application"
	"github.com/formsauth/simplesecurity/internal/domain/repository"
	"github.com/formsauth/simplesecurity/internal/infrastructure/memory"
	pginfra "github.com/formsauth/simplesecurity/internal/infrastructure/postgres"
	"github.com/formsauth/simplesecurity/internal/interface/middleware"
	"github.com/formsauth/simplesecurity/internal/router"
	"github.com/formsauth/simplesecurity/pkg/helpers"
	"github.com/formsauth/simplesecurity/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	hasher := helpers.NewHasher(cfg.PasswordScheme)

	var store repository.CredentialStore
	switch cfg.StoreDriver {
	case "memory":
		store = memory.NewCredentialStore(hasher)
	default:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		store = pginfra.NewCredentialStore(pool, hasher)
	}

	provider := application.NewSecurityProvider(store, helpers.NewTicketCodec(cfg.TicketSecret), logger, cfg.TicketTTL)
	if err := provider.Initialize(ctx, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to initialize security provider: %v", err)
	}

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, router.Deps{Provider: provider, Cookies: cookies, Logger: logger})
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

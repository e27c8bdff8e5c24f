package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"renolead-backend/pkg/api"
	"renolead-backend/pkg/clients/gohighlevel"
	"renolead-backend/pkg/config"
	"renolead-backend/pkg/logger"
	"renolead-backend/pkg/middleware"
	"renolead-backend/pkg/ratelimit"
	"renolead-backend/pkg/security"
	"renolead-backend/pkg/services"
)

// sweepInterval is how often the rate-limit maps drop expired windows.
const sweepInterval = 5 * time.Minute

func main() {
	// .env is optional; production reads the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init("renolead-backend", cfg.Environment, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Two independent limiters: a flood on one key space cannot starve the
	// other.
	ipLimiter := ratelimit.New(cfg.MaxRequestsPerIP, cfg.IPWindow)
	emailLimiter := ratelimit.New(cfg.MaxRequestsPerEmail, cfg.EmailWindow)
	ipLimiter.StartJanitor(ctx, sweepInterval)
	emailLimiter.StartJanitor(ctx, sweepInterval)

	crmClient := gohighlevel.NewClient(cfg)
	leadService := services.NewLeadService(crmClient)
	signer := security.NewSigner(cfg.SigningSecret)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Str("correlation_id", middleware.GetRequestID(c)).
			Interface("panic", recovered).
			Msg("Panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An error occurred processing your submission"})
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg))

	handlers := api.NewHandlers(leadService, signer, ipLimiter, emailLimiter, cfg)

	router.POST("/lead-intake", handlers.HandleLeadIntake)
	router.GET("/health", handlers.HealthCheck)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Error starting server")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}
	log.Info().Msg("Server stopped")
}

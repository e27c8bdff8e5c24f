package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"renolead-backend/pkg/config"
)

// CORS builds the preflight policy from the allowed-origins list: exact
// origin matches only, with "*" as an explicit wildcard. Outside production
// the policy is permissive so local frontends and previews work.
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:       24 * time.Hour,
	}

	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
			break
		}
	}

	// An empty allowlist in production would reject every cross-origin
	// caller including the landing page itself, so fall back to permissive.
	if wildcard || !cfg.IsProduction() || len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(corsCfg)
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"renolead-backend/pkg/config"
	"renolead-backend/pkg/middleware"
	"renolead-backend/pkg/models"
	"renolead-backend/pkg/ratelimit"
	"renolead-backend/pkg/sanitize"
	"renolead-backend/pkg/security"
	"renolead-backend/pkg/services"
)

// maxBodyBytes caps the intake request body at 10KB.
const maxBodyBytes = 10 * 1024

// SignatureVerifier is the slice of the signature codec the gateway needs.
type SignatureVerifier interface {
	Verify(env models.SignedEnvelope, signature string, now time.Time) error
}

// Handlers contains all HTTP handlers for the API.
type Handlers struct {
	service      services.LeadService
	verifier     SignatureVerifier
	ipLimiter    *ratelimit.Limiter
	emailLimiter *ratelimit.Limiter
	cfg          *config.Config
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	service services.LeadService,
	verifier SignatureVerifier,
	ipLimiter *ratelimit.Limiter,
	emailLimiter *ratelimit.Limiter,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		service:      service,
		verifier:     verifier,
		ipLimiter:    ipLimiter,
		emailLimiter: emailLimiter,
		cfg:          cfg,
		now:          time.Now,
	}
}

// HealthCheck reports process health as a function of the required secrets
// being configured.
func (h *Handlers) HealthCheck(c *gin.Context) {
	checks := map[string]bool{
		"ghlApiKey":            h.cfg.GHLAPIKey != "",
		"ghlLocationId":        h.cfg.GHLLocationID != "",
		"requestSigningSecret": h.cfg.SigningSecret != "",
	}

	healthy := true
	for _, ok := range checks {
		healthy = healthy && ok
	}

	status := http.StatusOK
	label := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		label = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":      label,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.cfg.Environment,
		"checks":      checks,
	})
}

// HandleLeadIntake runs the submission pipeline. Each gate is a hard stop;
// client-facing bodies stay generic so callers cannot probe which gate
// rejected them. Details go to the log under the correlation id.
func (h *Handlers) HandleLeadIntake(c *gin.Context) {
	correlationID := middleware.GetRequestID(c)
	start := time.Now()
	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	log.Info().
		Str("correlation_id", correlationID).
		Str("ip", ip).
		Str("fingerprint", security.Fingerprint(userAgent, c.GetHeader("Accept-Language"), c.GetHeader("Accept-Encoding"))).
		Msg("Received form submission")

	if c.Request.ContentLength > maxBodyBytes {
		log.Warn().
			Str("correlation_id", correlationID).
			Int64("content_length", c.Request.ContentLength).
			Msg("Request too large")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var submission models.LeadSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			// Field names and constraints are logged, never echoed.
			log.Warn().
				Str("correlation_id", correlationID).
				Str("validation_errors", vErrs.Error()).
				Msg("Validation failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
			return
		}
		log.Warn().Str("correlation_id", correlationID).Msg("Invalid JSON body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	now := h.now()

	// Bot heuristics run before signature verification so obvious junk never
	// costs a digest computation.
	if security.HoneypotFilled(submission.WebsiteURL) {
		log.Warn().Str("correlation_id", correlationID).Msg("Bot detected: honeypot filled")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission"})
		return
	}

	if !security.TimingHuman(submission.StartTime, now) {
		log.Warn().
			Str("correlation_id", correlationID).
			Int64("start_time", submission.StartTime).
			Msg("Bot detected: invalid timing")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission"})
		return
	}

	if security.IsBotUserAgent(userAgent) {
		log.Warn().
			Str("correlation_id", correlationID).
			Str("user_agent", userAgent).
			Msg("Bot detected: user-agent")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission"})
		return
	}

	if err := h.verifier.Verify(submission.Envelope(), submission.Signature, now); err != nil {
		log.Warn().
			Str("correlation_id", correlationID).
			Err(err).
			Msg("Invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid request signature"})
		return
	}

	// The sanitized form is the only representation logged or forwarded from
	// here on.
	lead := models.SanitizedLead{
		FirstName: sanitize.Text(submission.FirstName),
		LastName:  sanitize.Text(submission.LastName),
		Email:     sanitize.Email(submission.Email),
		Phone:     sanitize.PhoneDigits(submission.Phone),
		Postcode:  sanitize.Text(submission.Postcode),
		QuizData: models.QuizData{
			OccupancyStatus:       submission.OccupancyStatus,
			HeatingType:           submission.HeatingType,
			ProfessionalSituation: submission.ProfessionalSituation,
			ProjectType:           submission.ProjectType,
			SurfaceArea:           submission.SurfaceArea,
			HouseAge:              submission.HouseAge,
			Timeline:              submission.Timeline,
		},
	}

	if decision := h.ipLimiter.Check(ip); !decision.Allowed {
		log.Warn().
			Str("correlation_id", correlationID).
			Str("ip", ip).
			Int("retry_after", decision.RetryAfter).
			Msg("Rate limit exceeded: IP")
		c.Header("Retry-After", strconv.Itoa(decision.RetryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		return
	}

	if decision := h.emailLimiter.Check(lead.Email); !decision.Allowed {
		log.Warn().
			Str("correlation_id", correlationID).
			Int("retry_after", decision.RetryAfter).
			Msg("Rate limit exceeded: email")
		c.Header("Retry-After", strconv.Itoa(decision.RetryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		return
	}

	result, err := h.service.SubmitLead(c.Request.Context(), lead, correlationID)
	if err != nil {
		log.Error().
			Str("correlation_id", correlationID).
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Error processing form submission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred processing your submission"})
		return
	}

	log.Info().
		Str("correlation_id", correlationID).
		Str("contact_id", result.Contact.ID).
		Bool("created", result.Created).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Thank you for your submission",
	})
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/customer-intake-api/internal/application/admin"
	"github.com/customer-intake-api/internal/application/customer"
	"github.com/customer-intake-api/internal/application/retention"
	"github.com/customer-intake-api/internal/application/verification"
	"github.com/customer-intake-api/internal/config"
	"github.com/customer-intake-api/internal/domain"
	jwtinfra "github.com/customer-intake-api/internal/infrastructure/jwt"
	"github.com/customer-intake-api/internal/infrastructure/messaging"
	"github.com/customer-intake-api/internal/transport/http/handler"
	appmiddleware "github.com/customer-intake-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	VerificationRepo VerificationRepository
	CustomerRepo     CustomerRepository
	Sender           messaging.Sender
	// Archive is nil when retention archiving is disabled.
	Archive Archiver
	// JWTProvider is nil when no key pair is configured; admin routes are
	// then not mounted and login is refused.
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(slog.Default()))
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.SecurityHeaders)
	r.Use(appmiddleware.RejectForwardedHeaders(cfg.IsProduction()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	sendRL := appmiddleware.PerMinute(cfg.OTPSendRatePerMinute)
	verifyRL := appmiddleware.PerMinute(cfg.OTPVerifyRatePerMinute)
	loginRL := appmiddleware.PerMinute(cfg.AdminLoginPerMinute)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Repo:        deps.VerificationRepo,
		Sender:      deps.Sender,
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		Retention:   cfg.OTPRetention,
		TemplateID:  cfg.TwilioTemplateSID,
	})
	customerSvc := customer.NewService(customer.ServiceDeps{
		Repo:                 deps.CustomerRepo,
		Verifications:        deps.VerificationRepo,
		RequireVerifiedPhone: cfg.CustomerRequireVerifiedPhone,
		VerificationWindow:   cfg.CustomerVerificationWindow,
	})
	retentionSvc := retention.NewService(retention.ServiceDeps{
		Repo:    deps.VerificationRepo,
		Archive: deps.Archive,
	})
	adminSvc := admin.NewService(cfg.AdminUsers, nil)
	if deps.JWTProvider != nil {
		adminSvc = admin.NewService(cfg.AdminUsers, deps.JWTProvider)
	}

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(verificationSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	adminH := handler.NewAdminHandler(adminSvc, verificationSvc, retentionSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sendRL.Limit).Post("/otp/send", otpH.Send)
		r.Options("/otp/send", handler.Preflight)
		r.With(verifyRL.Limit).Post("/otp/verify", otpH.Verify)
		r.Options("/otp/verify", handler.Preflight)

		r.Post("/customers", customerH.Register)
		r.With(loginRL.Limit).Post("/admin/sessions", adminH.Login)

		// ── Admin routes ─────────────────────────────────────────────────────
		if deps.JWTProvider == nil {
			return
		}
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/admin/customers", customerH.List)
			r.Get("/admin/customers/{id}", customerH.Get)
			r.Get("/admin/verifications/{phone}", adminH.Verifications)
			r.Post("/admin/verifications/purge", adminH.Purge)
		})
	})

	return r
}

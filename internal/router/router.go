// Package router assembles the HTTP routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"securekyc/internal/handlers"
	"securekyc/internal/middleware"
)

// Options configures cross-cutting route behaviour.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// AdminSecret protects back-office routes when set.
	AdminSecret []byte
}

// New builds the router.
func New(h *handlers.Handler, opts Options, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	r.Get("/", h.Home)
	r.Get("/healthz", h.Healthz)

	r.Post("/extract_aadhaar", h.ExtractAadhaar)
	r.Post("/extract_pan", h.ExtractPAN)
	r.Post("/extract_dl", h.ExtractDrivingLicence)
	r.Post("/validate_document", h.ValidateDocument)
	r.Post("/verify_identity", h.VerifyIdentity)
	r.Post("/analyze", h.Analyze)
	r.Post("/submit-kyc", h.SubmitKYC)

	r.Get("/get_kyc_data", h.GetKYCData)
	r.Get("/kyc-list", h.KYCList)
	r.Get("/verification-dashboard", h.VerificationDashboard)
	r.Get("/logs", h.Logs)
	r.Get("/alerts", h.Alerts)
	r.Get("/audit-trail", h.AuditTrail)

	r.Get("/records/{id}/qrcode", h.RecordQRCode)
	// Public shared view (token required via query param)
	r.Get("/records/{id}/shared", h.SharedRecord)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(opts.AdminSecret))
		r.Post("/approve/{id}", h.Approve)
		r.Post("/reject/{id}", h.Reject)
		r.Post("/records/{id}/share-link", h.GenerateShareLink)
	})
	return r
}

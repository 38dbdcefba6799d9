package http

import (
	"net/http"
	"time"

	"github.com/council-xenith/internal/application/admin"
	"github.com/council-xenith/internal/application/media"
	"github.com/council-xenith/internal/application/notification"
	"github.com/council-xenith/internal/application/otp"
	"github.com/council-xenith/internal/application/registration"
	"github.com/council-xenith/internal/application/xenith"
	"github.com/council-xenith/internal/config"
	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/pkg/form"
	"github.com/council-xenith/internal/transport/http/handler"
	appmiddleware "github.com/council-xenith/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const schemaCacheTTL = 10 * time.Minute

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	tracker := xenith.NewTracker(deps.Participants, cfg.XenithKeyPrefix)
	xenithSvc := xenith.NewService(xenith.ServiceDeps{
		Tracker:     tracker,
		OTP:         otp.NewStore(deps.Cache, cfg.OTPTTL),
		Cache:       deps.Cache,
		Mailer:      deps.Mailer,
		EmailDomain: cfg.XenithEmailDomain,
		TTL:         cfg.OTPTTL,
	})
	registrationSvc := registration.NewService(registration.ServiceDeps{
		Templates:   deps.Templates,
		Submissions: deps.Submissions,
		Schemas:     registration.NewSchemaCache(form.Options{AllowedDomain: cfg.XenithEmailDomain}, schemaCacheTTL),
	})
	notifSvc := notification.NewService(deps.Notifications, deps.Publisher)
	mediaSvc := media.NewService(deps.Objects, deps.MediaRepo)
	adminSvc := admin.NewService(deps.GoogleVerifier, deps.Tokens, cfg.AdminEmails)

	healthH := handler.NewHealthHandler()
	xenithH := handler.NewXenithHandler(xenithSvc)
	regH := handler.NewRegistrationHandler(registrationSvc)
	templateH := handler.NewTemplateHandler(registrationSvc)
	participantH := handler.NewParticipantHandler(tracker)
	notifH := handler.NewNotificationHandler(notifSvc)
	mediaH := handler.NewMediaHandler(mediaSvc)
	sessionH := handler.NewSessionHandler(adminSvc)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/xenith", func(r chi.Router) {
			r.Post("/level1/register", xenithH.Register)
			r.Post("/level2/verify", xenithH.Verify(domain.Level2))
			r.Post("/level3/verify", xenithH.Verify(domain.Level3))
			r.Post("/level1/confirm", xenithH.Confirm(domain.Level1))
			r.Post("/level2/confirm", xenithH.Confirm(domain.Level2))
			r.Post("/level3/confirm", xenithH.Confirm(domain.Level3))
		})

		r.Get("/registration/templates/{slug}", regH.GetTemplate)
		r.Post("/registration/templates/{slug}/unlock", regH.Unlock)
		r.Post("/registration/submit", regH.Submit)
		r.Get("/notifications", notifH.ListActive)

		// ── Admin routes ─────────────────────────────────────────────────────
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sessions", sessionH.Login)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(deps.Tokens))
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/templates", templateH.List)
				r.Post("/templates", templateH.Create)
				r.Get("/templates/{slug}", templateH.Get)
				r.Put("/templates/{slug}", templateH.Update)
				r.Delete("/templates/{slug}", templateH.Delete)
				r.Put("/templates/{slug}/active", templateH.SetActive)
				r.Get("/templates/{slug}/submissions", templateH.ListSubmissions)
				r.Delete("/submissions/{id}", templateH.DeleteSubmission)

				r.Get("/participants", participantH.List)
				r.Get("/participants/{email}", participantH.Get)

				r.Post("/notifications", notifH.Create)
				r.Delete("/notifications/{id}", notifH.Delete)

				r.Get("/media", mediaH.List)
				r.Post("/media", mediaH.Upload)
				r.Delete("/media/{id}", mediaH.Delete)
			})
		})
	})

	return r
}

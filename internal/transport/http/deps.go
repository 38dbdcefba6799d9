package http

import (
	"net/http"

	"github.com/council-xenith/internal/application/admin"
	"github.com/council-xenith/internal/application/media"
	"github.com/council-xenith/internal/application/notification"
	"github.com/council-xenith/internal/application/otp"
	"github.com/council-xenith/internal/application/registration"
	"github.com/council-xenith/internal/application/xenith"
	"github.com/council-xenith/internal/infrastructure/smtp"
	appmiddleware "github.com/council-xenith/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router. Stores are
// declared by the narrow interfaces the application services consume.
type Deps struct {
	Participants  xenith.ParticipantStore
	Templates     registration.TemplateStore
	Submissions   registration.SubmissionStore
	Notifications notification.Repo
	MediaRepo     media.Repo
	Objects       media.ObjectStore

	Cache     otp.Cache
	Mailer    smtp.Mailer
	Publisher notification.Publisher // optional

	Tokens         TokenProvider
	GoogleVerifier admin.TokenVerifier

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// TokenProvider signs admin sessions and verifies them on admin routes.
type TokenProvider interface {
	admin.Signer
	appmiddleware.TokenVerifier
}

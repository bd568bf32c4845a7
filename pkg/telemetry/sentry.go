package telemetry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/ordermgmt/pkg/config"
)

// scrubbedHeaders carry session or replay credentials and never leave the process.
var scrubbedHeaders = []string{"Cookie", "Authorization", "Idempotency-Key"}

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: 0.2,
		SendDefaultPII:   false,
		BeforeSend:       scrubEvent,
		Tags:             map[string]string{"namespace": Namespace},
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// scrubEvent strips buyer identity and session material from an event
// before it is sent. Request bodies are dropped since order and register
// payloads carry emails and passwords.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil {
		return nil
	}
	event.User.Email = ""
	event.User.IPAddress = ""
	event.User.Username = ""
	if req := event.Request; req != nil {
		req.Cookies = ""
		req.Data = ""
		for name := range req.Headers {
			for _, h := range scrubbedHeaders {
				if strings.EqualFold(name, h) {
					delete(req.Headers, name)
				}
			}
		}
	}
	return event
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware returns a net/http middleware that captures panics and errors.
// Repanic: true so the outer Recovery middleware still handles the 500 response.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return h.Handle
}

package log

import (
	"time"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// SentrySettings configures error reporting for the catalog processes.
type SentrySettings struct {
	DSN         string
	Environment string
	Release     string
}

// hookLevels lists the logrus severities forwarded to Sentry. Info-level
// request logs stay local.
var hookLevels = []logrus.Level{
	logrus.ErrorLevel,
	logrus.FatalLevel,
	logrus.PanicLevel,
}

// InitSentry wires up Sentry exception reporting and attaches it to the
// provided logrus logger. An empty DSN disables reporting; the returned hub
// is nil in that case and the flush func is a no-op.
func InitSentry(logger *logrus.Logger, settings SentrySettings) (*sentry.Hub, func(), error) {
	if settings.DSN == "" {
		return nil, func() {}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         settings.DSN,
		Environment: settings.Environment,
		Release:     settings.Release,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "initializing sentry client")
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	logger.AddHook(sentrylogrus.NewLogHookFromClient(hookLevels, client))

	flush := func() {
		hub.Flush(2 * time.Second)
	}

	return hub, flush, nil
}

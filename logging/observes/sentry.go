package observes

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryOptions configures NewSentry
type SentryOptions struct {
	Dsn         string
	Name        string
	Release     string
	Environment string
	SampleRate  float64
}

// NewSentry initializes the global Sentry client. It returns a flush
// function to run before exit.
func NewSentry(opt *SentryOptions) (func(), error) {
	if opt == nil || opt.Dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opt.Dsn,
		AttachStacktrace: true,
		SampleRate:       opt.SampleRate,
		ServerName:       opt.Name,
		Release:          opt.Release,
		Environment:      opt.Environment,
	})
	if err != nil {
		return nil, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// SentryHook forwards error level log entries to Sentry
type SentryHook struct {
	hub *sentry.Hub
}

// NewSentryHook creates a hook reporting through the current hub
func NewSentryHook() *SentryHook {
	return &SentryHook{hub: sentry.CurrentHub()}
}

// Levels implements logrus.Hook
func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire implements logrus.Hook
func (h *SentryHook) Fire(entry *logrus.Entry) error {
	err, ok := entry.Data[logrus.ErrorKey].(error)
	if !ok {
		err = errors.New(entry.Message)
	}
	h.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range entry.Data {
			if k != logrus.ErrorKey {
				scope.SetExtra(k, v)
			}
		}
		scope.SetLevel(sentry.Level(entry.Level.String()))
		h.hub.CaptureException(err)
	})
	return nil
}

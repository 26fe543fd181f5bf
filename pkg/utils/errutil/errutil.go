package errutil

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Handle logs an unexpected error and reports it to Sentry when a client is configured
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	logger.Error(msg, "error", err)

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	hub.Scope().SetTag("message", msg)
	if evID := hub.CaptureException(err); evID != nil {
		logger.Info("Error reported to Sentry", "sentry.event_id", string(*evID))
	}
}

package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/petroflow/petroflow/internal/jobs"
)

// AccountLister enumerates the accounts whose data jobs iterate over.
type AccountLister interface {
	ListAccountIDs(ctx context.Context) ([]int64, error)
}

// Warmer precomputes an account's dashboard bundles.
type Warmer interface {
	Warm(ctx context.Context, ownerID int64) error
}

// SessionCleaner removes expired session rows.
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks.
func NewSendEmailHandler(mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("send_email")
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		if err := mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
			logger.Error("send email", slog.Any("error", err), slog.String("to", payload.To))
			return tracker.End(err)
		}
		return tracker.End(nil)
	}
}

// NewDashboardWarmupHandler precomputes every account's dashboard bundles so
// the first morning request hits a warm cache.
func NewDashboardWarmupHandler(accounts AccountLister, warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track("dashboard_warmup")
		ids, err := accounts.ListAccountIDs(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, id := range ids {
			if err := warmer.Warm(ctx, id); err != nil {
				logger.Warn("dashboard warmup", slog.Any("error", err), slog.Int64("owner", id))
			}
		}
		return tracker.End(nil)
	}
}

// NewIntegrityScanHandler re-verifies stored derived fields across all rows.
func NewIntegrityScanHandler(scanner *IntegrityScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track("integrity_scan")
		report, err := scanner.Scan(ctx)
		if err != nil {
			return tracker.End(err)
		}
		metrics.AddDrift("orders", report.OrderDrift)
		metrics.AddDrift("deliveries", report.DeliveryDrift)
		if report.OrderDrift > 0 || report.DeliveryDrift > 0 {
			logger.Warn("derived fields drifted and were repaired",
				slog.Int("orders", report.OrderDrift),
				slog.Int("deliveries", report.DeliveryDrift))
		}
		return tracker.End(nil)
	}
}

// NewSessionCleanupHandler removes expired session rows.
func NewSessionCleanupHandler(cleaner SessionCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track("session_cleanup")
		removed, err := cleaner.CleanupExpiredSessions(ctx)
		if err != nil {
			return tracker.End(err)
		}
		if removed > 0 {
			logger.Info("expired sessions removed", slog.Int64("count", removed))
		}
		return tracker.End(nil)
	}
}

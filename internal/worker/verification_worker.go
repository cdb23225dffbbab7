package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/auth"
	"github.com/spec-kit/binwatch/internal/service"
)

// VerificationWorker periodically re-checks unverified live sessions against
// the credential store. Email verification happens out-of-band (the user
// clicks a link), so polling is the only way to observe it; the interval
// matches the screen-level 5-second recheck.
type VerificationWorker struct {
	sessions auth.SessionStore
	accounts *service.AccountService
	interval time.Duration
	logger   *zap.Logger
}

// NewVerificationWorker constructs the worker.
func NewVerificationWorker(sessions auth.SessionStore, accounts *service.AccountService, interval time.Duration, logger *zap.Logger) *VerificationWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &VerificationWorker{
		sessions: sessions,
		accounts: accounts,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. The ticker is owned by this
// call and always stopped on exit, so no timer survives shutdown.
func (w *VerificationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("verification worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *VerificationWorker) sweep(ctx context.Context) {
	sessions, err := w.sessions.ListUnverified(ctx)
	if err != nil {
		w.logger.Warn("verification sweep failed", zap.Error(err))
		return
	}

	for i := range sessions {
		session := sessions[i]
		status, err := w.accounts.CheckEmailVerification(ctx, &session)
		if err != nil {
			w.logger.Warn("verification recheck failed", zap.String("uid", session.UID), zap.Error(err))
			continue
		}
		if status.IsVerified {
			w.logger.Info("session verified",
				zap.String("uid", session.UID),
				zap.Bool("profile_updated", status.ProfileUpdated))
		}
	}
}

// internal/service/auth/reaper.go
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reaper periodically bulk-deletes expired sessions from the registry. It
// runs independently of request traffic; a failed tick is logged and retried
// on the next one, never fatal to the serving path.
type Reaper struct {
	sessions SessionRegistry
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReaper(sessions SessionRegistry, interval time.Duration, logger *zap.Logger) *Reaper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reaper{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the reap loop. Call Stop to terminate it.
func (r *Reaper) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("session reaper stopped")
				return
			case <-ticker.C:
				if err := r.RunOnce(ctx); err != nil {
					r.logger.Error("session reap failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop cancels the reap loop and waits for it to exit.
func (r *Reaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

// RunOnce performs a single reap pass. Exposed so tests and operators can
// trigger a deterministic sweep.
func (r *Reaper) RunOnce(ctx context.Context) error {
	reaped, err := r.sessions.DeleteExpired(ctx, r.now())
	if err != nil {
		return err
	}
	if reaped > 0 {
		r.logger.Info("expired sessions reaped", zap.Int64("count", reaped))
	}
	return nil
}

// internal/app/system/workers/invitesweep.go
package workers

import (
	"context"
	"sync"
	"time"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// InviteSweep is a background worker that marks lapsed pending invitations
// as expired. Expiry is still enforced lazily at token resolution; the sweep
// only keeps owner-facing invitation lists tidy, so a long sweep interval or
// a skipped run never affects correctness.
type InviteSweep struct {
	invitations *invitationstore.Store
	log         *zap.Logger
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewInviteSweep creates a new invitation expiry sweep worker.
//
// Parameters:
//   - inviteStore: the invitations store
//   - logger: zap logger for logging
//   - interval: how often to run the sweep (e.g., 1 hour)
func NewInviteSweep(inviteStore *invitationstore.Store, logger *zap.Logger, interval time.Duration) *InviteSweep {
	return &InviteSweep{
		invitations: inviteStore,
		log:         logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *InviteSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("invitation sweep worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *InviteSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("invitation sweep worker stopped")
}

func (w *InviteSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *InviteSweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	count, err := w.invitations.ExpireLapsed(ctx)
	if err != nil {
		w.log.Error("failed to expire lapsed invitations", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("expired lapsed invitations", zap.Int64("count", count))
	}
}

package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DepletionReconciler realigns stored categories with stock levels.
type DepletionReconciler interface {
	ReconcileDepletion(ctx context.Context) (int64, error)
}

// ReconcileWorker periodically moves products without stock to agotados and
// restocked ones back to their category, covering raw adjustments that
// skipped the transition.
type ReconcileWorker struct {
	reconciler DepletionReconciler
	interval   time.Duration
}

// NewReconcileWorker constructs a ReconcileWorker.
func NewReconcileWorker(reconciler DepletionReconciler, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{
		reconciler: reconciler,
		interval:   interval,
	}
}

// Start runs one pass immediately, then loops until ctx is cancelled.
// A non-positive interval disables the worker.
func (w *ReconcileWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Reconcile worker disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Msg("Starting reconcile worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Reconcile worker stopped")
			return
		}
	}
}

func (w *ReconcileWorker) run(ctx context.Context) {
	n, err := w.reconciler.ReconcileDepletion(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reconcile depleted products")
		return
	}
	if n > 0 {
		log.Info().Int64("changed", n).Msg("Reconciled depleted products")
	}
}

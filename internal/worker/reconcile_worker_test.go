package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (r *countingReconciler) ReconcileDepletion(ctx context.Context) (int64, error) {
	r.calls.Add(1)
	return 1, r.err
}

func TestReconcileWorker_RunsUntilCancelled(t *testing.T) {
	rec := &countingReconciler{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewReconcileWorker(rec, 5*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rec.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestReconcileWorker_SurvivesErrors(t *testing.T) {
	rec := &countingReconciler{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go NewReconcileWorker(rec, 5*time.Millisecond).Start(ctx)
	assert.Eventually(t, func() bool { return rec.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestReconcileWorker_Disabled(t *testing.T) {
	rec := &countingReconciler{}
	NewReconcileWorker(rec, 0).Start(context.Background())
	assert.Zero(t, rec.calls.Load())
}

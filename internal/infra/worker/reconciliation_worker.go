package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/fitness-sales/internal/infra/http/middleware"
	"github.com/xavierca1/fitness-sales/internal/usecase"
)

// ReconciliationWorker runs the sweep on a fixed interval. One immediate run
// at startup repairs whatever the previous process left unfinished.
type ReconciliationWorker struct {
	reconciler   *usecase.SaleReconciler
	tickInterval time.Duration
}

func NewReconciliationWorker(reconciler *usecase.SaleReconciler, interval time.Duration) *ReconciliationWorker {
	return &ReconciliationWorker{
		reconciler:   reconciler,
		tickInterval: interval,
	}
}

func (w *ReconciliationWorker) Start(ctx context.Context) {
	log.Printf("🕒 [SWEEP] reconciliation worker started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ [SWEEP] reconciliation worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReconciliationWorker) runOnce(ctx context.Context) {
	res, err := w.reconciler.Run(ctx)
	if err != nil {
		log.Printf("❌ [SWEEP] cycle failed: %v", err)
		return
	}
	middleware.RecordSweep(res.Inspected, res.Parked)
}

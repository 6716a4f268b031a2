package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/application/services"
	"github.com/saborlocal/payment-sync/internal/domain"
)

// OrderError records one order whose reconciliation failed during a scan.
type OrderError struct {
	OrderID string
	Err     error
}

// Report summarizes one scan cycle.
type Report struct {
	Scanned   int
	Confirmed int
	Cancelled int
	Skipped   int
	Errors    []OrderError
}

// PendingScanner periodically sweeps Pix orders still awaiting payment
// confirmation and reconciles each against the gateway. A failure on one
// order never aborts the rest of the batch; whatever a cycle leaves
// unresolved is picked up again on the next tick.
type PendingScanner struct {
	orderRepo   application.OrderRepository
	reconciler  *services.ReconcileService
	interval    time.Duration
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

func NewPendingScanner(
	orderRepo application.OrderRepository,
	reconciler *services.ReconcileService,
	interval time.Duration,
	batchSize int,
	concurrency int,
	logger *slog.Logger,
) *PendingScanner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PendingScanner{
		orderRepo:   orderRepo,
		reconciler:  reconciler,
		interval:    interval,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *PendingScanner) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting pending-order scanner",
		"interval", s.interval,
		"batch_size", s.batchSize,
		"concurrency", s.concurrency,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping pending-order scanner")
			return
		case <-ticker.C:
			report := s.RunOnce(ctx)
			if report.Scanned > 0 || len(report.Errors) > 0 {
				s.logger.Info("scan cycle finished",
					"scanned", report.Scanned,
					"confirmed", report.Confirmed,
					"cancelled", report.Cancelled,
					"skipped", report.Skipped,
					"errors", len(report.Errors),
				)
			}
		}
	}
}

// RunOnce executes a single scan cycle.
func (s *PendingScanner) RunOnce(ctx context.Context) Report {
	var report Report

	pending, err := s.orderRepo.FindPendingByMethod(ctx, domain.MethodPix, s.batchSize)
	if err != nil {
		s.logger.Error("failed to fetch pending orders", "error", err)
		return report
	}

	if len(pending) == 0 {
		return report
	}

	report.Scanned = len(pending)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, order := range pending {
		if order.PaymentID == "" {
			report.Skipped++
			continue
		}

		g.Go(func() error {
			outcome, err := s.reconciler.Reconcile(gctx, order.PaymentID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				s.logger.Error("reconciliation failed for order",
					"order_id", order.ID,
					"payment_id", order.PaymentID,
					"error", err,
				)
				report.Errors = append(report.Errors, OrderError{OrderID: order.ID, Err: err})
				// Scan failures are isolated per order.
				return nil
			}

			switch outcome {
			case services.OutcomeConfirmed:
				report.Confirmed++
			case services.OutcomeCancelled:
				report.Cancelled++
			}
			return nil
		})
	}

	_ = g.Wait()

	return report
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/application/services"
	"github.com/saborlocal/payment-sync/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func seedPending(repo *services.MockOrderRepository, n int) {
	for i := 0; i < n; i++ {
		repo.Put(&domain.Order{
			ID:            fmt.Sprintf("order-%d", i),
			PaymentID:     fmt.Sprintf("pay-%d", i),
			PaymentMethod: domain.MethodPix,
			PaymentStatus: domain.PaymentPending,
			Status:        domain.OrderCreated,
			CreatedAt:     time.Now().Add(-time.Hour),
		})
	}
}

func TestScanner_ReconcilesAllPending(t *testing.T) {
	repo := services.NewMockOrderRepository()
	seedPending(repo, 4)

	gw := &services.MockGatewayClient{
		QueryFn: func(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
			return &application.GatewayStatus{Status: 2}, nil
		},
	}

	reconciler := services.NewReconcileService(repo, gw, testLogger())
	scanner := NewPendingScanner(repo, reconciler, time.Minute, 100, 2, testLogger())

	report := scanner.RunOnce(context.Background())

	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 4, report.Confirmed)
	assert.Zero(t, report.Cancelled)
	assert.Empty(t, report.Errors)

	for i := 0; i < 4; i++ {
		assert.Equal(t, domain.PaymentPaid, repo.Get(fmt.Sprintf("order-%d", i)).PaymentStatus)
	}
}

func TestScanner_PartialFailureIsIsolated(t *testing.T) {
	repo := services.NewMockOrderRepository()
	seedPending(repo, 6)

	failing := map[string]bool{"pay-2": true, "pay-5": true}
	gw := &services.MockGatewayClient{
		QueryFn: func(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
			if failing[paymentID] {
				return nil, errors.New("connection reset")
			}
			return &application.GatewayStatus{Status: 2}, nil
		},
	}

	reconciler := services.NewReconcileService(repo, gw, testLogger())
	scanner := NewPendingScanner(repo, reconciler, time.Minute, 100, 1, testLogger())

	report := scanner.RunOnce(context.Background())

	assert.Equal(t, 6, report.Scanned)
	assert.Equal(t, 4, report.Confirmed)
	assert.Len(t, report.Errors, 2)

	// The failing orders stay pending for the next cycle.
	assert.Equal(t, domain.PaymentPending, repo.Get("order-2").PaymentStatus)
	assert.Equal(t, domain.PaymentPending, repo.Get("order-5").PaymentStatus)
}

func TestScanner_SkipsOrdersWithoutPaymentID(t *testing.T) {
	repo := services.NewMockOrderRepository()
	repo.Put(&domain.Order{
		ID:            "order-nopay",
		PaymentMethod: domain.MethodPix,
		PaymentStatus: domain.PaymentPending,
	})
	repo.Put(&domain.Order{
		ID:            "order-1",
		PaymentID:     "pay-1",
		PaymentMethod: domain.MethodPix,
		PaymentStatus: domain.PaymentPending,
	})

	gw := &services.MockGatewayClient{
		QueryFn: func(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
			return &application.GatewayStatus{Status: 10}, nil
		},
	}

	reconciler := services.NewReconcileService(repo, gw, testLogger())
	scanner := NewPendingScanner(repo, reconciler, time.Minute, 100, 1, testLogger())

	report := scanner.RunOnce(context.Background())

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Cancelled)
	assert.Equal(t, 1, gw.QueryCalls)
}

func TestScanner_FetchFailureReturnsEmptyReport(t *testing.T) {
	repo := services.NewMockOrderRepository()
	repo.FindPendingByMethodFn = func(ctx context.Context, method domain.PaymentMethod, limit int) ([]*domain.Order, error) {
		return nil, application.NewPersistenceError(errors.New("scan failed"))
	}

	reconciler := services.NewReconcileService(repo, &services.MockGatewayClient{}, testLogger())
	scanner := NewPendingScanner(repo, reconciler, time.Minute, 100, 1, testLogger())

	report := scanner.RunOnce(context.Background())
	assert.Zero(t, report.Scanned)
	assert.Empty(t, report.Errors)
}

func TestScanner_StartStopsOnCancel(t *testing.T) {
	repo := services.NewMockOrderRepository()
	reconciler := services.NewReconcileService(repo, &services.MockGatewayClient{}, testLogger())
	scanner := NewPendingScanner(repo, reconciler, 10*time.Millisecond, 100, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scanner.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop after cancellation")
	}
}

func TestScanner_HonorsBatchLimit(t *testing.T) {
	repo := services.NewMockOrderRepository()
	seedPending(repo, 10)

	gw := &services.MockGatewayClient{
		QueryFn: func(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
			return &application.GatewayStatus{Status: 1}, nil
		},
	}

	reconciler := services.NewReconcileService(repo, gw, testLogger())
	scanner := NewPendingScanner(repo, reconciler, time.Minute, 3, 1, testLogger())

	report := scanner.RunOnce(context.Background())
	require.Equal(t, 3, report.Scanned)
}

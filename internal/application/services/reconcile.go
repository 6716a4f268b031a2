package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/saborlocal/payment-sync/internal/application"
)

// Outcome is the result of one reconciliation attempt.
type Outcome string

const (
	// OutcomeAlreadyTerminal means the order had already settled; nothing
	// was written.
	OutcomeAlreadyTerminal Outcome = "ALREADY_TERMINAL"
	// OutcomeConfirmed means this call committed the paid transition.
	OutcomeConfirmed Outcome = "CONFIRMED"
	// OutcomeCancelled means this call committed the cancelled transition.
	OutcomeCancelled Outcome = "CANCELLED"
	// OutcomeNoOp means the gateway still reports the payment in flight.
	OutcomeNoOp Outcome = "NO_OP"
	// OutcomeNotFound means no order carries the payment identifier.
	OutcomeNotFound Outcome = "NOT_FOUND"
)

// ReconcileService is the single authority for the payment fields of an
// order. Both the webhook handler and the pending-order scanner funnel
// through Reconcile; neither writes payment state on its own.
type ReconcileService struct {
	orderRepo application.OrderRepository
	gateway   application.GatewayClient
	logger    *slog.Logger
	now       func() time.Time
}

func NewReconcileService(
	orderRepo application.OrderRepository,
	gateway application.GatewayClient,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		orderRepo: orderRepo,
		gateway:   gateway,
		logger:    logger,
		now:       time.Now,
	}
}

// Reconcile resolves the order's payment state against the gateway's
// authoritative status. The terminal check runs before the gateway call:
// a settled order is never re-queried and never re-written, which makes
// duplicate or concurrent deliveries of the same payment event inert.
// Gateway transport failures propagate to the caller untouched; the
// webhook's redelivery and the next scan cycle are the retry mechanism.
func (s *ReconcileService) Reconcile(ctx context.Context, paymentID string) (Outcome, error) {
	order, err := s.orderRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if application.IsNotFound(err) {
			return OutcomeNotFound, nil
		}
		return "", err
	}

	if order.PaymentStatus.IsTerminal() {
		s.logger.Info("order already settled",
			"order_id", order.ID,
			"payment_id", paymentID,
			"payment_status", order.PaymentStatus,
		)
		return OutcomeAlreadyTerminal, nil
	}

	status, err := s.gateway.Query(ctx, paymentID)
	if err != nil {
		return "", application.NewTransportError(err)
	}

	switch {
	case status.Confirmed():
		if err := s.orderRepo.MarkPaid(ctx, order.ID, s.now()); err != nil {
			return "", err
		}
		s.logger.Info("order confirmed as paid",
			"order_id", order.ID,
			"payment_id", paymentID,
			"amount", status.Amount,
		)
		return OutcomeConfirmed, nil

	case status.TerminallyFailed():
		if err := s.orderRepo.MarkPaymentCancelled(ctx, order.ID, s.now()); err != nil {
			return "", err
		}
		s.logger.Info("order payment cancelled",
			"order_id", order.ID,
			"payment_id", paymentID,
			"gateway_status", status.Status,
		)
		return OutcomeCancelled, nil

	default:
		s.logger.Info("gateway status not final",
			"order_id", order.ID,
			"payment_id", paymentID,
			"gateway_status", status.Status,
		)
		return OutcomeNoOp, nil
	}
}

// CheckPayment looks up the gateway's view of a payment without touching
// any persisted state.
func (s *ReconcileService) CheckPayment(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
	if paymentID == "" {
		return nil, application.NewInvalidArgumentError("missing paymentId")
	}

	status, err := s.gateway.Query(ctx, paymentID)
	if err != nil {
		return nil, application.NewTransportError(err)
	}
	return status, nil
}

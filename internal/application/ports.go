package application

import (
	"context"
	"time"

	"github.com/saborlocal/payment-sync/internal/domain"
)

// GatewayStatus is the ephemeral result of one gateway lookup. It is
// consumed by a single reconciliation attempt and never persisted.
type GatewayStatus struct {
	Status int
	Amount int64
	Type   string
}

// Gateway numeric status codes. 2 means the payment settled; 10, 11 and
// 13 mean it can never settle (cancelled, refunded, aborted). Every
// other value, known or not, is treated as still in flight.
const (
	StatusCodeConfirmed = 2
	StatusCodeCancelled = 10
	StatusCodeRefunded  = 11
	StatusCodeAborted   = 13
)

func (g GatewayStatus) Confirmed() bool {
	return g.Status == StatusCodeConfirmed
}

func (g GatewayStatus) TerminallyFailed() bool {
	switch g.Status {
	case StatusCodeCancelled, StatusCodeRefunded, StatusCodeAborted:
		return true
	}
	return false
}

// GatewayClient is the port for the payment gateway's query endpoint.
type GatewayClient interface {
	Query(ctx context.Context, paymentID string) (*GatewayStatus, error)
}

// OrderRepository is the port for the order document store.
type OrderRepository interface {
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	FindPendingByMethod(ctx context.Context, method domain.PaymentMethod, limit int) ([]*domain.Order, error)
	// MarkPaid conditionally sets paymentStatus="paid", status="confirmed",
	// paidAt and updatedAt on the order, but only while the payment is
	// still pending. A lost race is not an error.
	MarkPaid(ctx context.Context, orderID string, at time.Time) error
	// MarkPaymentCancelled conditionally sets paymentStatus="cancelled"
	// and updatedAt, leaving the lifecycle status untouched.
	MarkPaymentCancelled(ctx context.Context, orderID string, at time.Time) error
}

// UserRepository is the port for the user/delivery-target store.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	AddToken(ctx context.Context, userID, token string) error
	RemoveTokens(ctx context.Context, userID string, tokens []string) error
}

// SendResult is the push transport's verdict for one delivery token.
type SendResult struct {
	Success   bool
	ErrorCode string
}

type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Responses    []SendResult
}

type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushClient is the port for the push-delivery transport. One call
// carries the whole token batch; the result reports per-token outcomes
// positionally.
type PushClient interface {
	SendMulticast(ctx context.Context, tokens []string, msg PushMessage) (*MulticastResult, error)
}

// AuthVerifier resolves a bearer token to the identity it belongs to.
type AuthVerifier interface {
	VerifyToken(ctx context.Context, token string) (userID string, err error)
}

// OrderChangeStream is the port for the store's change-observation
// mechanism. The channel closes when the stream ends or ctx is done.
type OrderChangeStream interface {
	Watch(ctx context.Context) (<-chan domain.OrderChange, error)
}

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/application/services"
	"github.com/saborlocal/payment-sync/internal/domain"
)

type fakeChangeStream struct {
	changes []domain.OrderChange
	served  bool
}

// Watch delivers the seeded changes once; reopened streams stay idle
// until the context ends, mirroring a quiet collection.
func (f *fakeChangeStream) Watch(ctx context.Context) (<-chan domain.OrderChange, error) {
	ch := make(chan domain.OrderChange)
	first := !f.served
	f.served = true
	go func() {
		defer close(ch)
		if !first {
			<-ctx.Done()
			return
		}
		for _, c := range f.changes {
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func statusChange(before, after domain.OrderStatus) domain.OrderChange {
	return domain.OrderChange{
		OrderID:      "order-1",
		BeforeStatus: before,
		AfterStatus:  after,
		Order: domain.Order{
			ID:      "order-1",
			OwnerID: "user-1",
			Status:  after,
		},
	}
}

func newWatcherFixture(t *testing.T) (*OrderChangeWatcher, *services.MockUserRepository, *services.MockPushClient) {
	t.Helper()
	users := services.NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1", FCMTokens: []string{"tok-a"}})
	pushc := &services.MockPushClient{}
	notifier := services.NewNotifyService(users, pushc, testLogger())
	watcher := NewOrderChangeWatcher(&fakeChangeStream{}, notifier, testLogger())
	return watcher, users, pushc
}

func TestWatcher_NotifiesOnStatusChange(t *testing.T) {
	watcher, _, pushc := newWatcherFixture(t)

	watcher.HandleChange(context.Background(), statusChange(domain.OrderCreated, domain.OrderConfirmed))

	require.Len(t, pushc.SentMessages, 1)
	msg := pushc.SentMessages[0]
	assert.Equal(t, "Pedido Confirmado! 🎉", msg.Title)
	assert.Equal(t, map[string]string{
		"orderId": "order-1",
		"type":    "order_update",
		"status":  "confirmed",
	}, msg.Data)
}

func TestWatcher_MessagePerStatus(t *testing.T) {
	cases := map[domain.OrderStatus]string{
		domain.OrderConfirmed: "Pedido Confirmado! 🎉",
		domain.OrderPreparing: "Preparando seu Pedido 👨‍🍳",
		domain.OrderReady:     "Pedido Pronto! 🍽️",
		domain.OrderDelivered: "Pedido Entregue! ✅",
		domain.OrderCancelled: "Pedido Cancelado 😔",
	}

	for status, title := range cases {
		watcher, _, pushc := newWatcherFixture(t)
		watcher.HandleChange(context.Background(), statusChange(domain.OrderCreated, status))
		require.Len(t, pushc.SentMessages, 1, "status %s", status)
		assert.Equal(t, title, pushc.SentMessages[0].Title, "status %s", status)
	}
}

func TestWatcher_UnchangedStatusIsNoOp(t *testing.T) {
	watcher, _, pushc := newWatcherFixture(t)

	change := statusChange(domain.OrderConfirmed, domain.OrderConfirmed)
	// Other fields changing alongside an unchanged status still gate.
	change.Order.PaymentStatus = domain.PaymentPaid

	watcher.HandleChange(context.Background(), change)

	assert.Empty(t, pushc.SentTokens)
}

func TestWatcher_UnknownStatusIsNoOp(t *testing.T) {
	watcher, _, pushc := newWatcherFixture(t)

	watcher.HandleChange(context.Background(), statusChange(domain.OrderCreated, domain.OrderStatus("on_hold")))

	assert.Empty(t, pushc.SentTokens)
}

func TestWatcher_NoTokensIsNoOp(t *testing.T) {
	watcher, users, pushc := newWatcherFixture(t)
	users.Put(&domain.User{ID: "user-1"})

	watcher.HandleChange(context.Background(), statusChange(domain.OrderCreated, domain.OrderConfirmed))

	assert.Empty(t, pushc.SentTokens)
}

func TestWatcher_DispatchFailureIsSwallowed(t *testing.T) {
	watcher, _, pushc := newWatcherFixture(t)
	pushc.SendMulticastFn = func(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error) {
		return nil, errors.New("push transport down")
	}

	// Must not panic or propagate; the state change already committed.
	watcher.HandleChange(context.Background(), statusChange(domain.OrderCreated, domain.OrderConfirmed))
}

func TestWatcher_StreamDrainedOnStart(t *testing.T) {
	users := services.NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1", FCMTokens: []string{"tok-a"}})
	pushc := &services.MockPushClient{}
	notifier := services.NewNotifyService(users, pushc, testLogger())

	stream := &fakeChangeStream{changes: []domain.OrderChange{
		statusChange(domain.OrderCreated, domain.OrderConfirmed),
		statusChange(domain.OrderConfirmed, domain.OrderPreparing),
	}}
	watcher := NewOrderChangeWatcher(stream, notifier, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watcher.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return pushc.SentCount() == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

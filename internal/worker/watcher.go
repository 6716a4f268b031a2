package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/application/services"
	"github.com/saborlocal/payment-sync/internal/domain"
)

type statusMessage struct {
	Title string
	Body  string
}

// statusMessages maps each notifiable order status to its notification
// text. Statuses missing from the table are silently skipped; new
// lifecycle values may exist before anyone writes copy for them.
var statusMessages = map[domain.OrderStatus]statusMessage{
	domain.OrderConfirmed: {
		Title: "Pedido Confirmado! 🎉",
		Body:  "Seu pedido foi confirmado e está sendo preparado.",
	},
	domain.OrderPreparing: {
		Title: "Preparando seu Pedido 👨‍🍳",
		Body:  "Seu pedido está sendo preparado com carinho.",
	},
	domain.OrderReady: {
		Title: "Pedido Pronto! 🍽️",
		Body:  "Seu pedido está pronto e será entregue em breve.",
	},
	domain.OrderDelivered: {
		Title: "Pedido Entregue! ✅",
		Body:  "Seu pedido foi entregue. Bom apetite!",
	},
	domain.OrderCancelled: {
		Title: "Pedido Cancelado 😔",
		Body:  "Seu pedido foi cancelado.",
	},
}

// OrderChangeWatcher observes order-status transitions on the store and
// notifies the order's owner. Delivery is best-effort: the state change
// has already committed by the time a change event arrives, so a failed
// dispatch is logged and dropped, never propagated.
type OrderChangeWatcher struct {
	changes  application.OrderChangeStream
	notifier *services.NotifyService
	logger   *slog.Logger
}

func NewOrderChangeWatcher(
	changes application.OrderChangeStream,
	notifier *services.NotifyService,
	logger *slog.Logger,
) *OrderChangeWatcher {
	return &OrderChangeWatcher{
		changes:  changes,
		notifier: notifier,
		logger:   logger,
	}
}

// Start consumes the change stream until ctx is cancelled, reopening the
// stream if it terminates.
func (w *OrderChangeWatcher) Start(ctx context.Context) {
	w.logger.Info("starting order-change watcher")

	for {
		ch, err := w.changes.Watch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to open order change stream", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
				continue
			}
		}

		for change := range ch {
			w.HandleChange(ctx, change)
		}

		if ctx.Err() != nil {
			w.logger.Info("stopping order-change watcher")
			return
		}

		w.logger.Warn("order change stream ended, reopening")
	}
}

// HandleChange notifies the owner about a single observed transition.
func (w *OrderChangeWatcher) HandleChange(ctx context.Context, change domain.OrderChange) {
	if change.BeforeStatus == change.AfterStatus {
		return
	}

	msg, ok := statusMessages[change.AfterStatus]
	if !ok {
		return
	}

	ownerID := change.Order.OwnerID
	if ownerID == "" {
		w.logger.Warn("order has no owner", "order_id", change.OrderID)
		return
	}

	data := map[string]string{
		"orderId": change.OrderID,
		"type":    "order_update",
		"status":  string(change.AfterStatus),
	}

	result, err := w.notifier.Notify(ctx, ownerID, msg.Title, msg.Body, data)
	if err != nil {
		w.logger.Error("failed to send order notification",
			"order_id", change.OrderID,
			"user_id", ownerID,
			"status", change.AfterStatus,
			"error", err,
		)
		return
	}

	if result.TokensResolved == 0 {
		return
	}

	w.logger.Info("order status notification sent",
		"order_id", change.OrderID,
		"status", change.AfterStatus,
		"success_count", result.SuccessCount,
	)
}

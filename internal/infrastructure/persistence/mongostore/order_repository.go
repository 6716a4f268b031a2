package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/domain"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{col: store.db.Collection(orderCollection)}
}

// FindByPaymentID returns the order the gateway's payment identifier
// belongs to. paymentId is expected to be unique; if it is not, the
// first match wins.
func (r *OrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	var order domain.Order
	err := r.col.FindOne(ctx, bson.M{"paymentId": paymentID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, application.NewNotFoundError("order not found for payment id")
	}
	if err != nil {
		return nil, application.NewPersistenceError(err)
	}
	return &order, nil
}

// FindPendingByMethod scans for orders still awaiting payment
// confirmation for the given method. The limit bounds one scan cycle.
func (r *OrderRepository) FindPendingByMethod(ctx context.Context, method domain.PaymentMethod, limit int) ([]*domain.Order, error) {
	filter := bson.M{
		"paymentStatus": domain.PaymentPending,
		"paymentMethod": method,
	}

	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, application.NewPersistenceError(err)
	}
	defer cur.Close(ctx)

	var out []*domain.Order
	for cur.Next(ctx) {
		var o domain.Order
		if err := cur.Decode(&o); err != nil {
			return nil, application.NewPersistenceError(err)
		}
		out = append(out, &o)
	}
	if err := cur.Err(); err != nil {
		return nil, application.NewPersistenceError(err)
	}
	return out, nil
}

// MarkPaid commits the paid transition. The filter requires the payment
// to still be pending, so a webhook delivery and a scan cycle racing on
// the same order commit at most once; the loser matches nothing.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string, at time.Time) error {
	filter := bson.M{
		"_id":           orderID,
		"paymentStatus": domain.PaymentPending,
	}
	update := bson.M{
		"$set": bson.M{
			"paymentStatus": domain.PaymentPaid,
			"status":        domain.OrderConfirmed,
			"paidAt":        at,
			"updatedAt":     at,
		},
	}

	if _, err := r.col.UpdateOne(ctx, filter, update); err != nil {
		return application.NewPersistenceError(err)
	}
	return nil
}

// MarkPaymentCancelled commits the cancelled transition. Only payment
// fields are touched; the order's lifecycle status is left to its own
// pipeline.
func (r *OrderRepository) MarkPaymentCancelled(ctx context.Context, orderID string, at time.Time) error {
	filter := bson.M{
		"_id":           orderID,
		"paymentStatus": domain.PaymentPending,
	}
	update := bson.M{
		"$set": bson.M{
			"paymentStatus": domain.PaymentCancelled,
			"updatedAt":     at,
		},
	}

	if _, err := r.col.UpdateOne(ctx, filter, update); err != nil {
		return application.NewPersistenceError(err)
	}
	return nil
}

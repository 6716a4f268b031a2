package mongostore

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saborlocal/payment-sync/internal/domain"
)

// OrderChangeStream adapts the order collection's change stream into the
// application's change-observation port.
type OrderChangeStream struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func NewOrderChangeStream(store *Store, logger *slog.Logger) *OrderChangeStream {
	return &OrderChangeStream{
		col:    store.db.Collection(orderCollection),
		logger: logger,
	}
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument             *domain.Order `bson:"fullDocument"`
	FullDocumentBeforeChange *domain.Order `bson:"fullDocumentBeforeChange"`
	UpdateDescription        struct {
		UpdatedFields bson.M `bson:"updatedFields"`
	} `bson:"updateDescription"`
}

// Watch opens the change stream and pumps update events into the
// returned channel. The channel closes when the stream ends or ctx is
// cancelled.
func (s *OrderChangeStream) Watch(ctx context.Context) (<-chan domain.OrderChange, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"update", "replace"}},
		}}},
	}

	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	stream, err := s.col.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.OrderChange)

	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				s.logger.Error("failed to decode change event", "error", err)
				continue
			}

			if ev.FullDocument == nil {
				// The document was deleted between the update and the
				// lookup; nothing to notify about.
				continue
			}

			change := domain.OrderChange{
				OrderID:     ev.DocumentKey.ID,
				AfterStatus: ev.FullDocument.Status,
				Order:       *ev.FullDocument,
			}

			switch {
			case ev.FullDocumentBeforeChange != nil:
				change.BeforeStatus = ev.FullDocumentBeforeChange.Status
			case ev.UpdateDescription.UpdatedFields != nil:
				// Without a pre-image, fall back to the update
				// description: a status absent from updatedFields did
				// not change.
				if _, ok := ev.UpdateDescription.UpdatedFields["status"]; !ok {
					change.BeforeStatus = ev.FullDocument.Status
				}
			}

			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.logger.Error("order change stream terminated", "error", err)
		}
	}()

	return out, nil
}

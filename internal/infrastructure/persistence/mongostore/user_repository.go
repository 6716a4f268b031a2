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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{col: store.db.Collection(userCollection)}
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, application.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, application.NewPersistenceError(err)
	}
	return &user, nil
}

// AddToken registers a delivery token for the user. $addToSet keeps the
// token set free of duplicates; the upsert covers users whose document
// does not carry the field yet.
func (r *UserRepository) AddToken(ctx context.Context, userID, token string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$addToSet": bson.M{"fcm_tokens": token},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.col.UpdateOne(ctx, filter, update, opts); err != nil {
		return application.NewPersistenceError(err)
	}
	return nil
}

// RemoveTokens drops the given tokens from the user's set in a single
// update.
func (r *UserRepository) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	filter := bson.M{"_id": userID}
	update := bson.M{
		"$pull": bson.M{"fcm_tokens": bson.M{"$in": tokens}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	if _, err := r.col.UpdateOne(ctx, filter, update); err != nil {
		return application.NewPersistenceError(err)
	}
	return nil
}

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"itoparty/internal/model"
)

// AccountRepo is the identity directory for anonymous accounts.
type AccountRepo interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

type accountRepo struct {
	collection *mongo.Collection
}

// NewAccountRepo creates a Mongo-backed account repository.
func NewAccountRepo(db *mongo.Database) AccountRepo {
	return &accountRepo{
		collection: db.Collection("accounts"),
	}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.collection.InsertOne(ctx, account)
	return err
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.collection.FindOne(ctx, map[string]interface{}{"_id": id}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Account not found
		}
		return nil, err
	}

	return &account, nil
}

func (r *accountRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]interface{}{"_id": id})
	return err
}

func (r *accountRepo) ListIDs(ctx context.Context) ([]string, error) {
	cursor, err := r.collection.Find(ctx, map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var account model.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, err
		}
		ids = append(ids, account.ID)
	}
	return ids, cursor.Err()
}

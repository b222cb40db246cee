package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mebelmart-backend/internal/domain"
)

type MongoOrders struct {
	coll *mongo.Collection
}

var _ OrderRepository = (*MongoOrders)(nil)

func (r *MongoOrders) Create(ctx context.Context, o *domain.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoOrders) List(ctx context.Context, userID string) ([]domain.Order, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, now time.Time) (*domain.Order, error) {
	var o domain.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"orderStatus": status, "updatedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

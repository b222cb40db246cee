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

const defaultCartAttempts = 8

// MongoCarts serialises writers on the same user through an optimistic
// version check: a write only lands if the stored version is the one read.
type MongoCarts struct {
	coll        *mongo.Collection
	maxAttempts int
}

var _ CartRepository = (*MongoCarts)(nil)

func (r *MongoCarts) FindOrCreate(ctx context.Context, userID string, now time.Time) (*domain.Cart, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{
		"items":     bson.A{},
		"total":     0.0,
		"version":   int64(1),
		"createdAt": now,
		"updatedAt": now,
	}}
	var c domain.Cart
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race; the winner's cart is there now
		err = r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &c, nil
}

func (r *MongoCarts) Update(ctx context.Context, userID string, upsert bool, fn CartMutation) (*domain.Cart, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		var c domain.Cart
		fresh := false
		err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			if !upsert {
				return nil, ErrNotFound
			}
			c = domain.Cart{ID: primitive.NewObjectID(), UserID: userID}
			fresh = true
		case err != nil:
			return nil, err
		}
		if c.Items == nil {
			c.Items = []domain.CartItem{}
		}
		if err := fn(&c); err != nil {
			return nil, err
		}

		prev := c.Version
		c.Version = prev + 1
		if fresh {
			if _, err := r.coll.InsertOne(ctx, c); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					continue
				}
				return nil, err
			}
			return &c, nil
		}
		res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID, "version": versionFilter(prev)}, c)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return &c, nil
		}
	}
	return nil, ErrVersionConflict
}

// versionFilter matches carts written before versioning existed too.
func versionFilter(v int64) any {
	if v == 0 {
		return bson.M{"$in": bson.A{int64(0), nil}}
	}
	return v
}

func (r *MongoCarts) Replace(ctx context.Context, c *domain.Cart) error {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{
		"$set": bson.M{
			"items":     c.Items,
			"total":     c.Total,
			"updatedAt": c.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": c.CreatedAt},
		"$inc":         bson.M{"version": int64(1)},
	}
	var stored domain.Cart
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"userId": c.UserID}, update, opts).Decode(&stored)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrVersionConflict
		}
		return err
	}
	c.ID, c.Version, c.CreatedAt = stored.ID, stored.Version, stored.CreatedAt
	return nil
}

func (r *MongoCarts) Delete(ctx context.Context, userID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

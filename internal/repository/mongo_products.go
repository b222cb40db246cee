package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mebelmart-backend/internal/domain"
)

type MongoProducts struct {
	coll *mongo.Collection
}

var _ ProductRepository = (*MongoProducts)(nil)

func (r *MongoProducts) Create(ctx context.Context, p *domain.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *MongoProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoProducts) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoProducts) List(ctx context.Context) ([]domain.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	products := []domain.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

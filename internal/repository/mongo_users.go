package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mebelmart-backend/internal/domain"
)

type MongoUsers struct {
	coll *mongo.Collection
}

var _ UserRepository = (*MongoUsers)(nil)

func (r *MongoUsers) Create(ctx context.Context, u *domain.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUsers) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) List(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetProjection(bson.M{"password": 0})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

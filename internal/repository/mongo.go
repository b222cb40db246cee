package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore owns the client and the four collections the backend uses.
type MongoStore struct {
	client   *mongo.Client
	Users    *mongo.Collection
	Products *mongo.Collection
	Carts    *mongo.Collection
	Orders   *mongo.Collection
}

// ConnectMongo dials uri, pings the primary and binds the collections of
// database. The caller owns the returned store and must Close it.
func ConnectMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		Users:    db.Collection("users"),
		Products: db.Collection("products"),
		Carts:    db.Collection("carts"),
		Orders:   db.Collection("orders"),
	}, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.Users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{s.Users, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{s.Orders, mongo.IndexModel{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: unique}},
		{s.Orders, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.Carts, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique}},
	}
	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("create index on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) UserRepository() *MongoUsers       { return &MongoUsers{coll: s.Users} }
func (s *MongoStore) ProductRepository() *MongoProducts { return &MongoProducts{coll: s.Products} }
func (s *MongoStore) CartRepository() *MongoCarts {
	return &MongoCarts{coll: s.Carts, maxAttempts: defaultCartAttempts}
}
func (s *MongoStore) OrderRepository() *MongoOrders { return &MongoOrders{coll: s.Orders} }

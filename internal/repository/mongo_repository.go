package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a MongoDB implementation of Store.
// Each logical collection maps to a MongoDB collection of the same name.
type MongoStore struct {
	db      *mongo.Database
	breaker *gobreaker.CircuitBreaker
}

// NewMongoStore creates a Store on db. breaker may be nil.
func NewMongoStore(db *mongo.Database, breaker *gobreaker.CircuitBreaker) *MongoStore {
	return &MongoStore{db: db, breaker: breaker}
}

// Collection returns the named collection
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{
		coll:    s.db.Collection(name),
		breaker: s.breaker,
	}
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

type mongoCollection struct {
	coll    *mongo.Collection
	breaker *gobreaker.CircuitBreaker
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

// execute runs fn through the circuit breaker when one is configured
func (c *mongoCollection) execute(fn func() (any, error)) (any, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

func (c *mongoCollection) Add(ctx context.Context, fields map[string]any) (string, error) {
	id := uuid.NewString()
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}

	_, err := c.execute(func() (any, error) {
		return c.coll.InsertOne(ctx, doc)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *mongoCollection) Get(ctx context.Context, id string) (*Document, error) {
	result, err := c.execute(func() (any, error) {
		var raw bson.M
		if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return toDocument(result.(bson.M))
}

func (c *mongoCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := c.Get(ctx, id)
		return err
	}

	result, err := c.execute(func() (any, error) {
		return c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	})
	if err != nil {
		return err
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	result, err := c.execute(func() (any, error) {
		return c.coll.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return err
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	filter := bson.D{}
	for _, cond := range q.Where {
		filter = append(filter, bson.E{Key: cond.Field, Value: cond.Value})
	}

	opts := options.Find()
	if q.OrderBy != nil {
		direction := 1
		if q.OrderBy.Descending {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy.Field, Value: direction}, {Key: "_id", Value: 1}})
	}

	result, err := c.execute(func() (any, error) {
		cursor, err := c.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var raws []bson.M
		if err := cursor.All(ctx, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	})
	if err != nil {
		return nil, err
	}

	raws := result.([]bson.M)
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := toDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func toDocument(raw bson.M) (*Document, error) {
	id, ok := raw["_id"].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected document id type %T", raw["_id"])
	}
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = v
	}
	return &Document{ID: id, Fields: fields}, nil
}

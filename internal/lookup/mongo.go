package lookup

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Backend storing one {kind, code, value} document per entry.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to MongoDB and ensures a unique (kind, code) index.
func OpenMongo(ctx context.Context, uri, dbName, collName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb lookup: %w", err)
	}

	coll := client.Database(dbName).Collection(collName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Mongo{client: client, coll: coll}, nil
}

// Value returns the value of code within kind.
func (m *Mongo) Value(ctx context.Context, kind, code string) (string, bool, error) {
	e, ok, err := m.findOne(ctx, bson.D{{Key: "kind", Value: kind}, {Key: "code", Value: code}})
	return e.Value, ok, err
}

// IsValid reports whether code exists for any kind.
func (m *Mongo) IsValid(ctx context.Context, code string) (bool, error) {
	n, err := m.coll.CountDocuments(ctx, bson.D{{Key: "code", Value: code}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return n > 0, nil
}

// Code returns the smallest code whose value within kind equals value.
func (m *Mongo) Code(ctx context.Context, kind, value string) (string, bool, error) {
	e, ok, err := m.findOne(ctx, bson.D{{Key: "kind", Value: kind}, {Key: "value", Value: value}})
	return e.Code, ok, err
}

func (m *Mongo) findOne(ctx context.Context, filter bson.D) (Entry, bool, error) {
	var e Entry
	opts := options.FindOne().SetSort(bson.D{{Key: "code", Value: 1}})
	err := m.coll.FindOne(ctx, filter, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("find code: %w", err)
	}
	return e, true, nil
}

// Put upserts entries with one bulk write.
func (m *Mongo) Put(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(entries))
	for i, e := range entries {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "kind", Value: e.Kind}, {Key: "code", Value: e.Code}}).
			SetReplacement(e).
			SetUpsert(true)
	}
	if _, err := m.coll.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("upsert codes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

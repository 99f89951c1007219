package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoOps = map[Op]string{
	OpEqual:        "$eq",
	OpLess:         "$lt",
	OpLessEqual:    "$lte",
	OpGreater:      "$gt",
	OpGreaterEqual: "$gte",
}

// MongoStore implements Store on MongoDB. Transactions need a replica set.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore wraps a connected client.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName)}
}

func (s *MongoStore) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	indexes := map[string][]mongo.IndexModel{
		CollectionQuotes: {
			unique,
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}}},
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
			{Keys: bson.D{{Key: "providerId", Value: 1}}},
		},
		CollectionCompanies:       {unique},
		CollectionUsers:           {unique},
		CollectionFailedTransfers: {unique, {Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}}},
		CollectionNotifications:   {unique, {Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}}},
	}
	for coll, models := range indexes {
		if _, err := s.coll(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, dst any) error {
	err := s.coll(collection).FindOne(ctx, bson.M{"id": id}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, doc any) error {
	if _, err := s.coll(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll(collection).ReplaceOne(ctx, bson.M{"id": id}, doc, opts); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := s.coll(collection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	filter := bson.M{}
	for _, f := range q.Filters {
		op, ok := mongoOps[f.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
		cond, _ := filter[f.Field].(bson.M)
		if cond == nil {
			cond = bson.M{}
		}
		cond[op] = f.Value
		filter[f.Field] = cond
	}

	opts := options.Find()
	if q.OrderBy != "" {
		field, dir := q.OrderBy, 1
		if strings.HasPrefix(field, "-") {
			field, dir = field[1:], -1
		}
		opts.SetSort(bson.D{{Key: field, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.coll(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, mongoDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return docs, nil
}

// RunTransaction runs fn inside a session transaction. Nested calls join the
// outer transaction.
func (s *MongoStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoDocument bson.Raw

func (d mongoDocument) DataTo(dst any) error {
	return bson.Unmarshal(d, dst)
}

// Package docstore is a typed layer over Mongo collections holding reference data.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"panchayat/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "not_found", "resource not found")

// Filter matches documents whose fields equal the given values.
type Filter map[string]any

// Sort orders a FindMany result by a single stored field.
type Sort struct {
	Field string
	Desc  bool
}

// NewestFirst orders by creation time, newest first.
var NewestFirst = Sort{Field: "created_at", Desc: true}

type Store[T any] interface {
	Create(ctx context.Context, doc *T) error
	FindByKey(ctx context.Context, key string) (T, error)
	FindMany(ctx context.Context, filter Filter, order Sort) ([]T, error)
	UpdateByKey(ctx context.Context, key string, doc *T) error
	DeleteByKey(ctx context.Context, key string) (T, error)
}

// Collection stores values of T in one Mongo collection. T is expected to carry an
// _id ObjectID assigned by the caller before Create.
type Collection[T any] struct {
	name string
	coll *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{name: name, coll: db.Collection(name)}
}

// EnsureIndexes creates ascending indexes on the given fields plus created_at.
func (c *Collection[T]) EnsureIndexes(ctx context.Context, fields ...string) error {
	models := []mongo.IndexModel{{Keys: bson.D{{Key: "created_at", Value: -1}}}}
	for _, f := range fields {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
	}
	if _, err := c.coll.Indexes().CreateMany(ctx, models); err != nil {
		return apperr.Storage("create indexes on "+c.name, err)
	}
	return nil
}

func (c *Collection[T]) Create(ctx context.Context, doc *T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return apperr.Storage("insert into "+c.name, err)
	}
	return nil
}

func (c *Collection[T]) FindByKey(ctx context.Context, key string) (T, error) {
	var out T
	id, ok := parseKey(key)
	if !ok {
		return out, ErrNotFound
	}

	err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, apperr.Storage("find in "+c.name, err)
	}
	return out, nil
}

func (c *Collection[T]) FindMany(ctx context.Context, filter Filter, order Sort) ([]T, error) {
	opts := options.Find()
	if order.Field != "" {
		dir := 1
		if order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}

	cursor, err := c.coll.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, apperr.Storage("query "+c.name, err)
	}

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Storage("decode "+c.name, err)
	}
	return out, nil
}

// UpdateByKey replaces the stored document as a whole.
func (c *Collection[T]) UpdateByKey(ctx context.Context, key string, doc *T) error {
	id, ok := parseKey(key)
	if !ok {
		return ErrNotFound
	}

	res, err := c.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return apperr.Storage("replace in "+c.name, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByKey removes the document and returns what was stored.
func (c *Collection[T]) DeleteByKey(ctx context.Context, key string) (T, error) {
	var out T
	id, ok := parseKey(key)
	if !ok {
		return out, ErrNotFound
	}

	err := c.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, apperr.Storage(fmt.Sprintf("delete from %s", c.name), err)
	}
	return out, nil
}

func (f Filter) bson() bson.D {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: f[k]})
	}
	return d
}

func parseKey(key string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(key)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

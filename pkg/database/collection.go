package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB backed Repository
type Collection[T any] struct {
	db   *Database
	name string
}

var _ Repository[struct{}] = (*Collection[struct{}])(nil)

// NewCollection creates a repository over the named collection
func NewCollection[T any](db *Database, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Name returns the collection name
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) collection() (*mongo.Collection, error) {
	if !c.db.Connected() {
		return nil, ErrNotConnected
	}
	col := c.db.GetCollection(c.name)
	if col == nil {
		return nil, ErrNotConnected
	}
	return col, nil
}

func normalize(filter Filter) Filter {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

// Save inserts a document
func (c *Collection[T]) Save(ctx context.Context, doc *T) error {
	col, err := c.collection()
	if err != nil {
		return err
	}
	if _, err := col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", c.name, err)
	}
	return nil
}

// Find returns the matching documents in the requested order and page
func (c *Collection[T]) Find(ctx context.Context, filter Filter, opts FindOptions) ([]*T, error) {
	col, err := c.collection()
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts.SortField != "" {
		dir := 1
		if opts.Descending {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.SortField, Value: dir}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	cursor, err := col.Find(ctx, normalize(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.name, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	results := make([]*T, 0)
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		results = append(results, &doc)
	}

	return results, cursor.Err()
}

// Count returns the number of matching documents
func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	col, err := c.collection()
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, normalize(filter))
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", c.name, err)
	}
	return n, nil
}

// Update sets fields on all matching documents
func (c *Collection[T]) Update(ctx context.Context, filter Filter, set bson.M) (int64, error) {
	col, err := c.collection()
	if err != nil {
		return 0, err
	}
	res, err := col.UpdateMany(ctx, normalize(filter), bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("update in %s: %w", c.name, err)
	}
	return res.MatchedCount, nil
}

// CountBy groups documents by field with an aggregation
func (c *Collection[T]) CountBy(ctx context.Context, field string) (map[string]int64, error) {
	col, err := c.collection()
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", c.name, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var groups []struct {
		ID    interface{} `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", c.name, err)
	}

	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		out[fmt.Sprint(g.ID)] = g.Count
	}
	return out, nil
}

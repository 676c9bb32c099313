package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotConnected is returned when the store has no live connection
	ErrNotConnected = errors.New("database not connected")
	// ErrUnsupportedFilter is returned by the in-memory store for operator filters
	ErrUnsupportedFilter = errors.New("unsupported filter")
)

// Filter selects documents by field equality
type Filter = bson.M

// FindOptions controls ordering and pagination of Find
type FindOptions struct {
	SortField  string
	Descending bool
	Limit      int64
	Skip       int64
}

// NewestFirst sorts by createdAt descending with the given page
func NewestFirst(limit, skip int64) FindOptions {
	return FindOptions{SortField: "createdAt", Descending: true, Limit: limit, Skip: skip}
}

// Repository is the persistence gateway over one kind of document
type Repository[T any] interface {
	Save(ctx context.Context, doc *T) error
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]*T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Update sets fields on every matching document and returns how many matched
	Update(ctx context.Context, filter Filter, set bson.M) (int64, error)
	// CountBy groups all documents by field and counts each group
	CountBy(ctx context.Context, field string) (map[string]int64, error)
}

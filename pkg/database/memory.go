package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Repository. Documents are compared through their
// bson form, so filters and sort fields use the same names as in MongoDB.
type MemoryStore[T any] struct {
	mu   sync.RWMutex
	docs []*T
}

var _ Repository[struct{}] = (*MemoryStore[struct{}])(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{}
}

// Save stores a copy of doc
func (m *MemoryStore[T]) Save(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("save: nil document")
	}

	cp := *doc
	m.mu.Lock()
	m.docs = append(m.docs, &cp)
	m.mu.Unlock()
	return nil
}

type memoryMatch[T any] struct {
	index int
	doc   *T
	raw   bson.M
}

// compileFilter converts a filter to bson, rejecting query operators
func compileFilter(filter Filter) (bson.M, error) {
	want, err := toBSON(filter)
	if err != nil {
		return nil, err
	}
	for key := range want {
		if strings.HasPrefix(key, "$") || hasOperator(want[key]) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, key)
		}
	}
	return want, nil
}

// matchLocked returns the documents matching want. Callers hold mu.
func (m *MemoryStore[T]) matchLocked(want bson.M) ([]memoryMatch[T], error) {
	out := make([]memoryMatch[T], 0, len(m.docs))
	for i, doc := range m.docs {
		raw, err := toBSON(doc)
		if err != nil {
			return nil, err
		}
		if matches(raw, want) {
			out = append(out, memoryMatch[T]{index: i, doc: doc, raw: raw})
		}
	}
	return out, nil
}

// snapshot returns copies of the matching documents taken under the read lock
func (m *MemoryStore[T]) snapshot(filter Filter) ([]memoryMatch[T], error) {
	want, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	found, err := m.matchLocked(want)
	if err != nil {
		return nil, err
	}
	for i := range found {
		cp := *found[i].doc
		found[i].doc = &cp
	}
	return found, nil
}

// Find returns copies of the matching documents
func (m *MemoryStore[T]) Find(ctx context.Context, filter Filter, opts FindOptions) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, err := m.snapshot(filter)
	if err != nil {
		return nil, err
	}

	if opts.SortField != "" {
		if opts.Descending {
			// newest insert first among equal keys
			for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
				found[i], found[j] = found[j], found[i]
			}
		}
		sort.SliceStable(found, func(i, j int) bool {
			c := compareValues(found[i].raw[opts.SortField], found[j].raw[opts.SortField])
			if opts.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(found)) {
			found = nil
		} else {
			found = found[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(found)) > opts.Limit {
		found = found[:opts.Limit]
	}

	results := make([]*T, 0, len(found))
	for _, f := range found {
		results = append(results, f.doc)
	}
	return results, nil
}

// Count returns the number of matching documents
func (m *MemoryStore[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	want, err := compileFilter(filter)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	found, err := m.matchLocked(want)
	if err != nil {
		return 0, err
	}
	return int64(len(found)), nil
}

// Update sets fields on every matching document. Matching and writing happen
// under one lock, and updated documents replace the stored pointers so copies
// handed out earlier never change.
func (m *MemoryStore[T]) Update(ctx context.Context, filter Filter, set bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	want, err := compileFilter(filter)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	found, err := m.matchLocked(want)
	if err != nil {
		return 0, err
	}

	for _, f := range found {
		for k, v := range set {
			f.raw[k] = v
		}
		data, err := bson.Marshal(f.raw)
		if err != nil {
			return 0, err
		}
		updated := new(T)
		if err := bson.Unmarshal(data, updated); err != nil {
			return 0, err
		}
		m.docs[f.index] = updated
	}
	return int64(len(found)), nil
}

// CountBy groups every document by field
func (m *MemoryStore[T]) CountBy(ctx context.Context, field string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, err := m.snapshot(nil)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64)
	for _, f := range found {
		out[fmt.Sprint(f.raw[field])]++
	}
	return out, nil
}

func toBSON(v interface{}) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}
	if m, ok := v.(bson.M); ok && len(m) == 0 {
		return bson.M{}, nil
	}
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := bson.M{}
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func hasOperator(v interface{}) bool {
	switch doc := v.(type) {
	case bson.M:
		for k := range doc {
			if strings.HasPrefix(k, "$") {
				return true
			}
		}
	case primitive.D:
		for _, e := range doc {
			if strings.HasPrefix(e.Key, "$") {
				return true
			}
		}
	}
	return false
}

func matches(doc, want bson.M) bool {
	for key, expected := range want {
		if !valuesEqual(doc[key], expected) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compareValues orders the scalar types produced by bson decoding
func compareValues(a, b interface{}) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmpOrdered(fa, fb)
		}
	}
	switch av := a.(type) {
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			return cmpOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(av.Hex(), bv.Hex())
		}
	}
	return 0
}

func cmpOrdered[V int64 | float64 | primitive.DateTime](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

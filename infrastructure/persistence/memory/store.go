package memory

import (
	"context"
	"sort"
	"sync"

	"learnpath-backend/application/ports"
	"learnpath-backend/pkg/errors"
)

// Store is an in-memory DocumentStore for tests and local development.
// It implements the same contract as the DynamoDB store: key-addressed
// property bags per kind, equality-filtered queries with single-field sort.
type Store struct {
	mu     sync.RWMutex
	kinds  map[string]map[int64]ports.Properties
	nextID int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		kinds:  make(map[string]map[int64]ports.Properties),
		nextID: 1,
	}
}

// Put upserts a record, allocating an id when the given one is zero
func (s *Store) Put(ctx context.Context, kind string, id int64, props ports.Properties) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == 0 {
		id = s.nextID
		s.nextID++
	} else if id >= s.nextID {
		s.nextID = id + 1
	}

	records, ok := s.kinds[kind]
	if !ok {
		records = make(map[int64]ports.Properties)
		s.kinds[kind] = records
	}
	records[id] = cloneProps(props)
	return id, nil
}

// Get fetches a record by key
func (s *Store) Get(ctx context.Context, kind string, id int64) (ports.Properties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props, ok := s.kinds[kind][id]
	if !ok {
		return nil, errors.NewNotFoundError(kind)
	}
	return cloneProps(props), nil
}

// Delete removes a record by key; deleting an absent key is a no-op
func (s *Store) Delete(ctx context.Context, kind string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.kinds[kind], id)
	return nil
}

// Query returns all records of a kind matching every equality filter,
// sorted ascending by q.SortField ("id" sorts by key). Without a sort field
// the result is ordered by key for determinism.
func (s *Store) Query(ctx context.Context, q ports.Query) ([]ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ports.Record
	for id, props := range s.kinds[q.Kind] {
		if matches(props, q.Filters) {
			result = append(result, ports.Record{ID: id, Props: cloneProps(props)})
		}
	}

	if q.SortField == "" || q.SortField == "id" {
		sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	} else {
		field := q.SortField
		sort.Slice(result, func(i, j int) bool {
			return propLess(result[i].Props[field], result[j].Props[field])
		})
	}
	return result, nil
}

func matches(props ports.Properties, filters []ports.Filter) bool {
	for _, f := range filters {
		if props[f.Field] != f.Value {
			return false
		}
	}
	return true
}

// propLess orders property values of the types the mapper writes
func propLess(a, b interface{}) bool {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	default:
		return false
	}
}

func cloneProps(props ports.Properties) ports.Properties {
	clone := make(ports.Properties, len(props))
	for k, v := range props {
		clone[k] = v
	}
	return clone
}

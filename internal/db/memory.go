package db

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore used by tests and demos.
// Documents keep insertion order so unordered queries are stable.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	now         func() time.Time
}

type memCollection struct {
	order []string
	docs  map[string]map[string]interface{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]interface{})}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, data map[string]interface{}) error {
	normalized, err := s.normalize(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, normalized)
	return nil
}

func (s *MemoryStore) Merge(_ context.Context, collection, id string, data map[string]interface{}) error {
	normalized, err := s.normalize(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	existing, ok := c.docs[id]
	if !ok {
		s.put(collection, id, normalized)
		return nil
	}
	for k, v := range normalized {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, data map[string]interface{}) (string, error) {
	normalized, err := s.normalize(data)
	if err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, normalized)
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, data map[string]interface{}) error {
	normalized, err := s.normalize(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	existing, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range normalized {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return []*Document{}, nil
	}

	docs := []*Document{}
	for _, id := range c.order {
		data := c.docs[id]
		if matches(data, q.Filters) {
			docs = append(docs, &Document{ID: id, Data: copyMap(data)})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy]
			if q.Direction == Desc {
				a, b = b, a
			}
			return lessValue(a, b)
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) put(collection, id string, data map[string]interface{}) {
	c := s.collection(collection)
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = data
}

// normalize converts written values into the shapes a read hands back:
// string slices become []interface{} and structs become maps.
func (s *MemoryStore) normalize(data map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		nv, err := s.normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func (s *MemoryStore) normalizeValue(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64, time.Time:
		return t, nil
	case serverTimestamp:
		return s.now(), nil
	case []string:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			ne, err := s.normalizeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case map[string]interface{}:
		return s.normalize(t)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v := data[f.Field]
		switch f.Op {
		case OpEqual:
			if !equalValue(v, f.Value) {
				return false
			}
		case OpArrayContains:
			arr, ok := v.([]interface{})
			if !ok {
				return false
			}
			found := false
			for _, e := range arr {
				if equalValue(e, f.Value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func equalValue(a, b interface{}) bool {
	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	}
	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an < bn
	}
	return false
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case []interface{}:
			out[k] = append([]interface{}{}, t...)
		case map[string]interface{}:
			out[k] = copyMap(t)
		default:
			out[k] = v
		}
	}
	return out
}

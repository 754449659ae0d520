package testutils

import (
	"sort"
	"sync"

	"selfie/model"
)

// memStore is a map-backed collection. Documents are copied on the way in
// and out so callers cannot mutate stored state.
type memStore[T any] struct {
	mu    sync.RWMutex
	docs  map[string]*T
	order []string
	id    func(*T) string
	clone func(*T) *T
}

func newMemStore[T any](id func(*T) string, clone func(*T) *T) *memStore[T] {
	return &memStore[T]{docs: make(map[string]*T), id: id, clone: clone}
}

func (s *memStore[T]) insert(doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.id(doc)
	if _, ok := s.docs[key]; ok {
		return model.ErrConflict
	}
	s.docs[key] = s.clone(doc)
	s.order = append(s.order, key)
	return nil
}

func (s *memStore[T]) get(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s.clone(doc), nil
}

func (s *memStore[T]) put(doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.id(doc)
	if _, ok := s.docs[key]; !ok {
		return model.ErrNotFound
	}
	s.docs[key] = s.clone(doc)
	return nil
}

// mutate applies fn to the stored document in place.
func (s *memStore[T]) mutate(id string, fn func(*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return model.ErrNotFound
	}
	return fn(doc)
}

func (s *memStore[T]) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// filter returns copies of matching documents in insertion order.
func (s *memStore[T]) filter(match func(*T) bool) []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0)
	for _, key := range s.order {
		doc, ok := s.docs[key]
		if ok && match(doc) {
			out = append(out, s.clone(doc))
		}
	}
	return out
}

func (s *memStore[T]) removeWhere(match func(*T) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, doc := range s.docs {
		if match(doc) {
			delete(s.docs, key)
			n++
		}
	}
	return n
}

func (s *memStore[T]) updateWhere(fn func(*T) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, doc := range s.docs {
		if fn(doc) {
			n++
		}
	}
	return n
}

func (s *memStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) ([]string, bool) {
	out := list[:0:0]
	removed := false
	for _, v := range list {
		if v == s {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

func sortBy[T any](docs []*T, less func(a, b *T) bool) {
	sort.SliceStable(docs, func(i, j int) bool { return less(docs[i], docs[j]) })
}

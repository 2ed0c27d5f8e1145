package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]map[string]any // "scope/collection/id" -> data
	globals map[string]map[string]any // "collection/id" -> data

	// Fail forces an error for a given "scope/collection" key; used to
	// exercise partial-failure paths.
	Fail map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    map[string]map[string]any{},
		globals: map[string]map[string]any{},
	}
}

func key(scope, collection, id string) string { return scope + "/" + collection + "/" + id }

// Seed inserts a document without going through Set's merge handling.
func (m *MemoryStore) Seed(scope, collection, id string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key(scope, collection, id)] = data
}

// SeedGlobal inserts a root-level document outside the scope partitions.
func (m *MemoryStore) SeedGlobal(collection, id string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globals[collection+"/"+id] = data
}

func (m *MemoryStore) failure(scope, collection string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail[scope+"/"+collection]
}

func (m *MemoryStore) List(ctx context.Context, scope, collection string) ([]Document, error) {
	if err := m.failure(scope, collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := scope + "/" + collection + "/"
	var out []Document
	for k, data := range m.docs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, Document{ID: k[len(prefix):], Data: data})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, scope, collection, id string) (Document, bool, error) {
	if err := m.failure(scope, collection); err != nil {
		return Document{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[key(scope, collection, id)]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Data: data}, true, nil
}

func (m *MemoryStore) Query(ctx context.Context, scope, collection string, filters ...Filter) ([]Document, error) {
	docs, err := m.List(ctx, scope, collection)
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, d := range docs {
		match := true
		for _, f := range filters {
			if d.Data[f.Field] != f.Value {
				match = false
				break
			}
		}
		if match {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) Scopes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range m.docs {
		scope := k[:strings.Index(k, "/")]
		if !seen[scope] {
			seen[scope] = true
			out = append(out, scope)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryStore) GetGlobal(ctx context.Context, collection, id string) (Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.globals[collection+"/"+id]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Data: data}, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, scope, collection, id string, data map[string]any, merge bool) error {
	if err := m.failure(scope, collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(scope, collection, id)
	if merge {
		existing, ok := m.docs[k]
		if ok {
			merged := make(map[string]any, len(existing)+len(data))
			for f, v := range existing {
				merged[f] = v
			}
			for f, v := range data {
				merged[f] = v
			}
			m.docs[k] = merged
			return nil
		}
	}
	cp := make(map[string]any, len(data))
	for f, v := range data {
		cp[f] = v
	}
	m.docs[k] = cp
	return nil
}

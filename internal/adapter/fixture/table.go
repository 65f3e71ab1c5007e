package fixture

import (
	"strings"
	"sync"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

// table is an insertion-ordered map guarded by its own lock. Values go in
// and come out through clone so callers never share memory with the table.
type table[T any] struct {
	mu    sync.RWMutex
	ids   []string
	rows  map[string]T
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{rows: map[string]T{}, clone: clone}
}

// insert fails when id is taken or conflicts reports a clash with an existing row.
func (t *table[T]) insert(id string, v T, conflicts func(existing T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		return domain.ErrAlreadyExists
	}
	if conflicts != nil {
		for _, existing := range t.rows {
			if conflicts(existing) {
				return domain.ErrAlreadyExists
			}
		}
	}
	t.ids = append(t.ids, id)
	t.rows[id] = t.clone(v)
	return nil
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		return v, false
	}
	return t.clone(v), true
}

func (t *table[T]) replace(id string, v T, conflicts func(existing T) bool) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false, nil
	}
	if conflicts != nil {
		for otherID, existing := range t.rows {
			if otherID != id && conflicts(existing) {
				return true, domain.ErrAlreadyExists
			}
		}
	}
	t.rows[id] = t.clone(v)
	return true, nil
}

func (t *table[T]) remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, existing := range t.ids {
		if existing == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
	return true
}

// list returns matching rows in insertion order.
func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.ids))
	for _, id := range t.ids {
		v := t.rows[id]
		if keep == nil || keep(v) {
			out = append(out, t.clone(v))
		}
	}
	return out
}

// matches reports whether q occurs in any field, ignoring case. An empty q matches.
func matches(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Package memory provides map-backed stores for local runs and tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"marketplace/internal/data/repository"
)

// NewRepository returns empty in-memory stores sharing nothing with each other.
func NewRepository() *repository.Repository {
	return &repository.Repository{
		User:         NewUserRepository(),
		Product:      NewProductRepository(),
		RefreshToken: NewRefreshTokenRepository(),
	}
}

// record tracks insertion order so equal timestamps still list newest first.
type record[T any] struct {
	seq   uint64
	value T
}

type table[K comparable, T any] struct {
	mu   sync.RWMutex
	seq  uint64
	rows map[K]*record[T]
}

func newTable[K comparable, T any]() *table[K, T] {
	return &table[K, T]{rows: make(map[K]*record[T])}
}

func (t *table[K, T]) put(k K, v T) {
	if r, ok := t.rows[k]; ok {
		r.value = v
		return
	}
	t.seq++
	t.rows[k] = &record[T]{seq: t.seq, value: v}
}

// newestFirst returns matching values ordered by created time then insertion, descending.
func (t *table[K, T]) newestFirst(created func(T) time.Time, keep func(T) bool) []T {
	recs := make([]*record[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r.value) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		ci, cj := created(recs[i].value), created(recs[j].value)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return recs[i].seq > recs[j].seq
	})

	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.value
	}
	return out
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/testimonials/testimonials/internal/testimonial"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps testimonials in a map. It backs tests and servers started
// without MONGODB_URI.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*testimonial.Testimonial
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]*testimonial.Testimonial),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// ids share the Mongo format so clients can't tell the stores apart.
func (m *MemoryRepo) Create(_ context.Context, t *testimonial.Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now()
	}
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*testimonial.Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*testimonial.Testimonial, 0, len(m.store))
	for _, t := range m.store {
		cp := *t
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*testimonial.Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.store[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Update(_ context.Context, id string, f testimonial.Fields, image *string) (*testimonial.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	before := *t
	f.Apply(t)
	if image != nil {
		t.Image = *image
	}
	t.UpdatedAt = m.now()
	return &before, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) (*testimonial.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.store, id)
	return t, nil
}

// Len is the number of stored records.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

package rpc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pantun-api/cache"
	"pantun-api/models"
)

// memStore mimics the pantunPosts table.
type memStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]models.PantunPost
	now    func() time.Time
	err    error
}

func newMemStore() *memStore {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &memStore{
		nextID: 1,
		rows:   map[int]models.PantunPost{},
		now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
}

func (m *memStore) ListAll(ctx context.Context) ([]models.PantunPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.PantunPost{}
	for id := 1; id < m.nextID; id++ {
		if p, ok := m.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id int) ([]models.PantunPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.rows[id]; ok {
		return []models.PantunPost{p}, nil
	}
	return []models.PantunPost{}, nil
}

func hasSuffix(s *string, ending string) bool {
	return s != nil && strings.HasSuffix(*s, ending)
}

func (m *memStore) GetBySampiranEnding(ctx context.Context, count, ending string) ([]models.PantunPost, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.PantunPost{}
	for _, p := range all {
		s1 := hasSuffix(&p.Sampiran1, ending)
		s2 := hasSuffix(p.Sampiran2, ending)
		if (count == "1" && (s1 || s2)) || (count == "2" && s1 && s2) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) Create(ctx context.Context, req models.CreatePantunReq) (*models.PantunPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	now := m.now()
	p := models.PantunPost{
		ID:        m.nextID,
		Sampiran1: *req.Sampiran1,
		Sampiran2: req.Sampiran2,
		Content1:  *req.Content1,
		Content2:  req.Content2,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.rows[p.ID] = p
	m.nextID++
	return &p, nil
}

func (m *memStore) Update(ctx context.Context, req models.UpdatePantunReq) ([]models.PantunPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.rows[*req.ID]
	if !ok {
		return []models.PantunPost{}, nil
	}
	p.Sampiran1, p.Sampiran2 = *req.Sampiran1, req.Sampiran2
	p.Content1, p.Content2 = *req.Content1, req.Content2
	p.UpdatedAt = m.now()
	m.rows[p.ID] = p
	return []models.PantunPost{p}, nil
}

func (m *memStore) Delete(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]models.PantunPost
	hits    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]models.PantunPost{}}
}

func (c *memCache) GetJSON(ctx context.Context, key string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	c.hits++
	*(dst.(*[]models.PantunPost)) = v
	return nil
}

func (c *memCache) SetJSON(ctx context.Context, key string, val any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val.([]models.PantunPost)
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type memIndex struct {
	docs map[int]models.PantunPost
	err  error
}

func (i *memIndex) IndexPantun(ctx context.Context, p models.PantunPost) error {
	if i.err != nil {
		return i.err
	}
	i.docs[p.ID] = p
	return nil
}

func (i *memIndex) DeletePantun(ctx context.Context, id int) error {
	if i.err != nil {
		return i.err
	}
	delete(i.docs, id)
	return nil
}

func (i *memIndex) SearchPantun(ctx context.Context, q string) ([]models.PantunPost, error) {
	if i.err != nil {
		return nil, i.err
	}
	out := []models.PantunPost{}
	for _, p := range i.docs {
		for _, field := range []*string{&p.Sampiran1, p.Sampiran2, &p.Content1, p.Content2} {
			if field != nil && strings.Contains(*field, q) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

var errDBDown = errors.New("connection refused")

func ptr[T any](v T) *T { return &v }

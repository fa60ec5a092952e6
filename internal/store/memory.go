package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of link.Store and
// link.VisitLog for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[link.Code]*link.Link
	visits map[link.Code][]*link.Visit
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[link.Code]*link.Link),
		visits: make(map[link.Code][]*link.Visit),
	}
}

func (m *MemoryStore) GetByCode(_ context.Context, code link.Code) (*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.links[code]
	if !ok {
		return nil, link.ErrNotFound
	}

	return copyLink(l), nil
}

func (m *MemoryStore) Create(_ context.Context, l *link.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[l.Code]; ok {
		return link.ErrCodeConflict
	}

	m.links[l.Code] = copyLink(l)

	return nil
}

func (m *MemoryStore) RegisterVisit(_ context.Context, code link.Code, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.links[code]
	if !ok {
		return false, link.ErrNotFound
	}

	// Check and increment under one lock so concurrent visits can
	// never push the counter past the limit.
	if l.QuotaReached() {
		return false, nil
	}

	l.CurrentClicks++
	l.Visits++
	visitedAt := now
	l.LastVisitedAt = &visitedAt

	return true, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var links []*link.Link

	for _, l := range m.links {
		if l.OwnerID == ownerID {
			links = append(links, copyLink(l))
		}
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (m *MemoryStore) Append(_ context.Context, v *link.Visit) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := *v
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	m.visits[v.LinkCode] = append(m.visits[v.LinkCode], &entry)

	return entry.ID, nil
}

func (m *MemoryStore) ListByLink(_ context.Context, code link.Code, limit int) ([]*link.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.visits[code]

	visits := make([]*link.Visit, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(visits) >= limit {
			break
		}

		entry := *entries[i]
		visits = append(visits, &entry)
	}

	return visits, nil
}

func copyLink(l *link.Link) *link.Link {
	dup := *l

	if l.ExpiresAt != nil {
		expiresAt := *l.ExpiresAt
		dup.ExpiresAt = &expiresAt
	}

	if l.LastVisitedAt != nil {
		lastVisitedAt := *l.LastVisitedAt
		dup.LastVisitedAt = &lastVisitedAt
	}

	dup.AllowedEmails = append([]string(nil), l.AllowedEmails...)

	return &dup
}

var (
	_ link.Store    = (*MemoryStore)(nil)
	_ link.VisitLog = (*MemoryStore)(nil)
)

package link

import (
	"context"
	"time"
)

// Store defines the interface for durable link storage.
type Store interface {
	// GetByCode returns the link for a code.
	// Returns ErrNotFound if no link exists.
	GetByCode(ctx context.Context, code Code) (*Link, error)

	// Create inserts a new link.
	// Returns ErrCodeConflict if the code is already taken.
	Create(ctx context.Context, l *Link) error

	// RegisterVisit atomically increments the click and visit counters
	// and sets the last-visited timestamp, but only while the click
	// counter is still below the link's limit (if one is set). Returns
	// false when the quota slot was already consumed. Concurrent calls
	// for the same code must never push CurrentClicks past ClickLimit.
	RegisterVisit(ctx context.Context, code Code, now time.Time) (bool, error)

	// ListByOwner returns the owner's links, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Link, error)
}

// VisitLog defines the interface for the append-only visit log.
type VisitLog interface {
	// Append records one visit and returns its generated id.
	Append(ctx context.Context, v *Visit) (string, error)

	// ListByLink returns up to limit visits for a link, newest first.
	// A limit <= 0 returns all entries.
	ListByLink(ctx context.Context, code Code, limit int) ([]*Visit, error)
}

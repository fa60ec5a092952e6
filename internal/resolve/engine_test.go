package resolve_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/access"
	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/VictorEZCodes/BouncerLink/internal/messaging"
	"github.com/VictorEZCodes/BouncerLink/internal/notify"
	"github.com/VictorEZCodes/BouncerLink/internal/resolve"
	"github.com/VictorEZCodes/BouncerLink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDestination = "https://example.com/dest"

// capture collects published events so tests can assert on fan-out.
type capture[T any] struct {
	mu     sync.Mutex
	events []*T
	err    error
}

func (c *capture[T]) publish(event *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}

	c.events = append(c.events, event)

	return nil
}

func (c *capture[T]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.events)
}

// failingStore wraps a link.Store to make GetByCode fail.
type failingStore struct {
	link.Store
	getErr error
}

func (s *failingStore) GetByCode(ctx context.Context, code link.Code) (*link.Link, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}

	return s.Store.GetByCode(ctx, code)
}

// failingVisitLog rejects every append.
type failingVisitLog struct {
	link.VisitLog
}

func (f *failingVisitLog) Append(context.Context, *link.Visit) (string, error) {
	return "", errors.New("append failed")
}

type engineFixture struct {
	store         *store.MemoryStore
	engine        *resolve.Engine
	notifications *capture[notify.Event]
	visited       *capture[analytics.LinkVisitedEvent]
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()

	memStore := store.NewMemoryStore()
	notifications := &capture[notify.Event]{}
	visited := &capture[analytics.LinkVisitedEvent]{}

	engine := resolve.NewEngine(
		memStore,
		memStore,
		messaging.Publish[notify.Event](notifications.publish),
		messaging.Publish[analytics.LinkVisitedEvent](visited.publish),
		zap.NewNop(),
	)

	return &engineFixture{
		store:         memStore,
		engine:        engine,
		notifications: notifications,
		visited:       visited,
	}
}

func (f *engineFixture) createLink(t *testing.T, l *link.Link) {
	t.Helper()

	if l.DestinationURL == "" {
		l.DestinationURL = testDestination
	}

	l.CreatedAt = time.Now().Add(-time.Hour)

	require.NoError(t, f.store.Create(context.Background(), l))
}

func (f *engineFixture) resolve(t *testing.T, code string, creds access.Credentials) resolve.Outcome {
	t.Helper()

	outcome, err := f.engine.Resolve(context.Background(), link.Code(code), creds, resolve.Meta{
		ClientIP:  "203.0.113.7",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)

	return outcome
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture(t)

	outcome := f.resolve(t, "missing", access.Credentials{})

	assert.Equal(t, resolve.StateNotFound, outcome.State)
}

func TestResolve_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	broken := &failingStore{Store: f.store, getErr: link.ErrStoreUnavailable}
	engine := resolve.NewEngine(broken, f.store,
		messaging.Publish[notify.Event](f.notifications.publish),
		messaging.Publish[analytics.LinkVisitedEvent](f.visited.publish),
		zap.NewNop(),
	)

	_, err := engine.Resolve(context.Background(), "any", access.Credentials{}, resolve.Meta{})

	// Transient failure must surface as an error, never as NotFound.
	require.Error(t, err)
	assert.ErrorIs(t, err, link.ErrStoreUnavailable)
}

func TestResolve_OpenLink(t *testing.T) {
	t.Run("resolves straight through with no credentials", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "abc123"})

		outcome := f.resolve(t, "abc123", access.Credentials{})

		assert.Equal(t, resolve.StateResolved, outcome.State)
		assert.Equal(t, testDestination, outcome.DestinationURL)
	})

	t.Run("records one visit per resolution", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "abc123"})

		f.resolve(t, "abc123", access.Credentials{})

		l, err := f.store.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, 1, l.CurrentClicks)
		assert.Equal(t, int64(1), l.Visits)
		assert.NotNil(t, l.LastVisitedAt)

		visits, err := f.store.ListByLink(context.Background(), "abc123", 0)
		require.NoError(t, err)
		require.Len(t, visits, 1)
		assert.Equal(t, "203.0.113.7", visits[0].IPAddress)
		assert.Equal(t, "test-agent", visits[0].UserAgent)
		assert.Empty(t, visits[0].Email, "open links never record an email")
	})

	t.Run("resolution is deliberately not idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "abc123"})

		first := f.resolve(t, "abc123", access.Credentials{})
		second := f.resolve(t, "abc123", access.Credentials{})

		assert.Equal(t, resolve.StateResolved, first.State)
		assert.Equal(t, resolve.StateResolved, second.State)

		l, _ := f.store.GetByCode(context.Background(), "abc123")
		assert.Equal(t, 2, l.CurrentClicks)
		assert.Equal(t, int64(2), l.Visits)

		visits, _ := f.store.ListByLink(context.Background(), "abc123", 0)
		assert.Len(t, visits, 2)
	})
}

func TestResolve_Expired(t *testing.T) {
	f := newFixture(t)
	expiresAt := time.Now().Add(-time.Minute)
	f.createLink(t, &link.Link{
		Code:       "old",
		ExpiresAt:  &expiresAt,
		AccessCode: "abc",
	})

	t.Run("expired regardless of credentials", func(t *testing.T) {
		outcome := f.resolve(t, "old", access.Credentials{AccessCode: "abc"})

		assert.Equal(t, resolve.StateExpired, outcome.State)
	})

	t.Run("expired beats the access challenge", func(t *testing.T) {
		outcome := f.resolve(t, "old", access.Credentials{})

		assert.Equal(t, resolve.StateExpired, outcome.State)
	})

	t.Run("no visit was recorded", func(t *testing.T) {
		l, _ := f.store.GetByCode(context.Background(), "old")
		assert.Equal(t, 0, l.CurrentClicks)
	})
}

func TestResolve_Quota(t *testing.T) {
	t.Run("limit of one allows exactly one resolution", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "once", ClickLimit: 1})

		first := f.resolve(t, "once", access.Credentials{})
		second := f.resolve(t, "once", access.Credentials{})

		assert.Equal(t, resolve.StateResolved, first.State)
		assert.Equal(t, resolve.StateQuotaExceeded, second.State)

		l, _ := f.store.GetByCode(context.Background(), "once")
		assert.Equal(t, 1, l.CurrentClicks)
	})

	t.Run("concurrent resolutions never exceed the limit", func(t *testing.T) {
		const (
			limit     = 5
			resolvers = 20
			linkCode  = "contested"
		)

		f := newFixture(t)
		f.createLink(t, &link.Link{Code: linkCode, ClickLimit: limit})

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			resolved int
		)

		for i := 0; i < resolvers; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				outcome, err := f.engine.Resolve(context.Background(), linkCode, access.Credentials{}, resolve.Meta{})
				if err != nil {
					return
				}

				if outcome.State == resolve.StateResolved {
					mu.Lock()
					resolved++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, limit, resolved)

		l, _ := f.store.GetByCode(context.Background(), linkCode)
		assert.Equal(t, limit, l.CurrentClicks)
	})
}

func TestResolve_AccessChallenge(t *testing.T) {
	t.Run("gated link with no credentials asks for them", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{
			Code:          "gated",
			AccessCode:    "xyz",
			AllowedEmails: []string{"a@x.com"},
		})

		outcome := f.resolve(t, "gated", access.Credentials{})

		assert.Equal(t, resolve.StateAccessChallengeRequired, outcome.State)
		assert.True(t, outcome.Challenge.NeedsAccessCode)
		assert.True(t, outcome.Challenge.NeedsEmail)

		l, _ := f.store.GetByCode(context.Background(), "gated")
		assert.Equal(t, 0, l.CurrentClicks, "a challenge is not a visit")
	})

	t.Run("challenge names only the configured gates", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "code-only", AccessCode: "xyz"})

		outcome := f.resolve(t, "code-only", access.Credentials{})

		assert.True(t, outcome.Challenge.NeedsAccessCode)
		assert.False(t, outcome.Challenge.NeedsEmail)
	})

	t.Run("supplied-but-wrong credentials are denied, not challenged", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "gated", AccessCode: "xyz"})

		outcome := f.resolve(t, "gated", access.Credentials{AccessCode: "wrong"})

		assert.Equal(t, resolve.StateDenied, outcome.State)
		assert.Equal(t, access.ReasonInvalidAccessCode, outcome.Reason)
	})

	t.Run("correct credentials resolve", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{Code: "gated", AccessCode: "xyz"})

		outcome := f.resolve(t, "gated", access.Credentials{AccessCode: "xyz"})

		assert.Equal(t, resolve.StateResolved, outcome.State)
	})
}

func TestResolve_EmailGate(t *testing.T) {
	f := newFixture(t)
	f.createLink(t, &link.Link{
		Code:          "email-gated",
		AllowedEmails: []string{"a@x.com", "b@x.com"},
	})

	t.Run("denies email outside the allow list", func(t *testing.T) {
		outcome := f.resolve(t, "email-gated", access.Credentials{Email: "c@x.com"})

		assert.Equal(t, resolve.StateDenied, outcome.State)
		assert.Equal(t, access.ReasonEmailNotAuthorized, outcome.Reason)
	})

	t.Run("records the access email on the visit", func(t *testing.T) {
		outcome := f.resolve(t, "email-gated", access.Credentials{Email: "a@x.com"})

		require.Equal(t, resolve.StateResolved, outcome.State)

		visits, _ := f.store.ListByLink(context.Background(), "email-gated", 0)
		require.NotEmpty(t, visits)
		assert.Equal(t, "a@x.com", visits[0].Email)
	})
}

func TestResolve_VisitLogFailure(t *testing.T) {
	f := newFixture(t)
	f.createLink(t, &link.Link{Code: "abc123"})

	engine := resolve.NewEngine(f.store, &failingVisitLog{},
		messaging.Publish[notify.Event](f.notifications.publish),
		messaging.Publish[analytics.LinkVisitedEvent](f.visited.publish),
		zap.NewNop(),
	)

	outcome, err := engine.Resolve(context.Background(), "abc123", access.Credentials{}, resolve.Meta{})

	// The increment is the authoritative record of the click; a failed
	// log append must not fail the resolution.
	require.NoError(t, err)
	assert.Equal(t, resolve.StateResolved, outcome.State)

	l, _ := f.store.GetByCode(context.Background(), "abc123")
	assert.Equal(t, 1, l.CurrentClicks)
}

func TestResolve_Notifications(t *testing.T) {
	t.Run("fans out to owner and allow-listed emails", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{
			Code:                 "noisy",
			OwnerEmail:           "owner@x.com",
			AllowedEmails:        []string{"a@x.com", "b@x.com"},
			NotificationsEnabled: true,
		})

		f.resolve(t, "noisy", access.Credentials{Email: "a@x.com"})

		assert.Equal(t, 3, f.notifications.count())

		recipients := make([]string, 0, 3)
		for _, event := range f.notifications.events {
			recipients = append(recipients, event.Recipient)
			assert.Equal(t, "noisy", event.Code)
		}

		assert.ElementsMatch(t, []string{"owner@x.com", "a@x.com", "b@x.com"}, recipients)
	})

	t.Run("no notifications when disabled", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{
			Code:       "quiet",
			OwnerEmail: "owner@x.com",
		})

		f.resolve(t, "quiet", access.Credentials{})

		assert.Zero(t, f.notifications.count())
	})

	t.Run("no notifications without an owner email", func(t *testing.T) {
		f := newFixture(t)
		f.createLink(t, &link.Link{
			Code:                 "orphan",
			NotificationsEnabled: true,
		})

		f.resolve(t, "orphan", access.Credentials{})

		assert.Zero(t, f.notifications.count())
	})

	t.Run("publish failure never affects the outcome", func(t *testing.T) {
		f := newFixture(t)
		f.notifications.err = errors.New("broker down")
		f.visited.err = errors.New("broker down")
		f.createLink(t, &link.Link{
			Code:                 "flaky",
			OwnerEmail:           "owner@x.com",
			NotificationsEnabled: true,
		})

		outcome := f.resolve(t, "flaky", access.Credentials{})

		assert.Equal(t, resolve.StateResolved, outcome.State)

		l, _ := f.store.GetByCode(context.Background(), "flaky")
		assert.Equal(t, 1, l.CurrentClicks)
	})
}

func TestResolve_PublishesVisitEvent(t *testing.T) {
	f := newFixture(t)
	f.createLink(t, &link.Link{Code: "abc123"})

	f.resolve(t, "abc123", access.Credentials{})

	require.Equal(t, 1, f.visited.count())
	assert.Equal(t, "abc123", f.visited.events[0].Code)
	assert.Equal(t, "203.0.113.7", f.visited.events[0].ClientIP)
}

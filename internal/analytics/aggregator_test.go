package analytics_test

import (
	"testing"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visit(ip, ua, email string, at time.Time) *link.Visit {
	return &link.Visit{
		LinkCode:  "abc123",
		Timestamp: at,
		IPAddress: ip,
		UserAgent: ua,
		Email:     email,
	}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("zero visits yields zero counts and empty collections", func(t *testing.T) {
		l := &link.Link{Code: "abc123"}

		summary := analytics.Summarize(l, nil, analytics.UniqueByClient, 10)

		assert.Zero(t, summary.TotalVisits)
		assert.Zero(t, summary.UniqueVisitors)
		assert.Nil(t, summary.LastVisitedAt)
		assert.Empty(t, summary.RecentVisits)
		assert.Empty(t, summary.AllowedEmails)
	})

	t.Run("counts unique clients by ip and user agent", func(t *testing.T) {
		l := &link.Link{Code: "abc123", Visits: 4}
		visits := []*link.Visit{
			visit("10.0.0.1", "firefox", "", base),
			visit("10.0.0.1", "firefox", "", base.Add(time.Minute)),
			visit("10.0.0.1", "chrome", "", base.Add(2*time.Minute)),
			visit("10.0.0.2", "firefox", "", base.Add(3*time.Minute)),
		}

		summary := analytics.Summarize(l, visits, analytics.UniqueByClient, 10)

		assert.Equal(t, int64(4), summary.TotalVisits)
		assert.Equal(t, 3, summary.UniqueVisitors)
		assert.Equal(t, analytics.UniqueByClient, summary.UniqueMode)
	})

	t.Run("counts unique emails and skips anonymous visits", func(t *testing.T) {
		l := &link.Link{Code: "abc123", Visits: 4}
		visits := []*link.Visit{
			visit("10.0.0.1", "firefox", "alice@example.com", base),
			visit("10.0.0.2", "chrome", "alice@example.com", base.Add(time.Minute)),
			visit("10.0.0.3", "safari", "bob@example.com", base.Add(2*time.Minute)),
			visit("10.0.0.4", "edge", "", base.Add(3*time.Minute)),
		}

		summary := analytics.Summarize(l, visits, analytics.UniqueByEmail, 10)

		assert.Equal(t, 2, summary.UniqueVisitors)
		assert.Equal(t, analytics.UniqueByEmail, summary.UniqueMode)
	})

	t.Run("caps recent visits at recentN preserving order", func(t *testing.T) {
		l := &link.Link{Code: "abc123", Visits: 5}

		// Newest first, the order the visit log returns them in.
		visits := make([]*link.Visit, 0, 5)
		for i := 4; i >= 0; i-- {
			visits = append(visits, visit("10.0.0.1", "firefox", "", base.Add(time.Duration(i)*time.Minute)))
		}

		summary := analytics.Summarize(l, visits, analytics.UniqueByClient, 3)

		require.Len(t, summary.RecentVisits, 3)
		assert.Equal(t, base.Add(4*time.Minute), summary.RecentVisits[0].Timestamp)
		assert.Equal(t, base.Add(2*time.Minute), summary.RecentVisits[2].Timestamp)
	})

	t.Run("reports access status per allow-listed email", func(t *testing.T) {
		l := &link.Link{
			Code:          "abc123",
			AllowedEmails: []string{"alice@example.com", "bob@example.com"},
			Visits:        1,
		}
		visits := []*link.Visit{
			visit("10.0.0.1", "firefox", "alice@example.com", base),
		}

		summary := analytics.Summarize(l, visits, analytics.UniqueByEmail, 10)

		require.Len(t, summary.AllowedEmails, 2)
		assert.Equal(t, analytics.EmailStatus{Email: "alice@example.com", Accessed: true}, summary.AllowedEmails[0])
		assert.Equal(t, analytics.EmailStatus{Email: "bob@example.com", Accessed: false}, summary.AllowedEmails[1])
	})

	t.Run("carries link counters through", func(t *testing.T) {
		lastVisited := base.Add(time.Hour)
		l := &link.Link{
			Code:          "abc123",
			ClickLimit:    10,
			CurrentClicks: 7,
			Visits:        7,
			LastVisitedAt: &lastVisited,
		}

		summary := analytics.Summarize(l, nil, analytics.UniqueByClient, 10)

		assert.Equal(t, 10, summary.ClickLimit)
		assert.Equal(t, 7, summary.CurrentClicks)
		assert.Equal(t, &lastVisited, summary.LastVisitedAt)
	})
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of link.Store and
// link.VisitLog.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) GetByCode(ctx context.Context, code link.Code) (*link.Link, error) {
	query := `
		SELECT code, destination_url, owner_id, owner_email, created_at,
		       expires_at, access_code, allowed_emails, click_limit,
		       current_clicks, visits, last_visited_at, notifications_enabled
		FROM links
		WHERE code = $1
	`

	var (
		l          link.Link
		ownerID    *string
		ownerEmail *string
		accessCode *string
		clickLimit *int
	)

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&l.Code,
		&l.DestinationURL,
		&ownerID,
		&ownerEmail,
		&l.CreatedAt,
		&l.ExpiresAt,
		&accessCode,
		&l.AllowedEmails,
		&clickLimit,
		&l.CurrentClicks,
		&l.Visits,
		&l.LastVisitedAt,
		&l.NotificationsEnabled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrNotFound
		}

		return nil, storeErr("get link", err)
	}

	l.OwnerID = deref(ownerID)
	l.OwnerEmail = deref(ownerEmail)
	l.AccessCode = deref(accessCode)

	if clickLimit != nil {
		l.ClickLimit = *clickLimit
	}

	return &l, nil
}

func (p *PostgresStore) Create(ctx context.Context, l *link.Link) error {
	query := `
		INSERT INTO links (code, destination_url, owner_id, owner_email,
		                   created_at, expires_at, access_code, allowed_emails,
		                   click_limit, current_clicks, visits, notifications_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, $10)
	`

	_, err := p.pool.Exec(ctx, query,
		string(l.Code),
		l.DestinationURL,
		nullable(l.OwnerID),
		nullable(l.OwnerEmail),
		l.CreatedAt,
		l.ExpiresAt,
		nullable(l.AccessCode),
		l.AllowedEmails,
		nullableInt(l.ClickLimit),
		l.NotificationsEnabled,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return link.ErrCodeConflict
		}

		return storeErr("create link", err)
	}

	return nil
}

// RegisterVisit relies on a single conditional UPDATE so the quota
// check and the increment are one atomic statement; two concurrent
// resolutions at the last remaining slot cannot both match the WHERE
// clause.
func (p *PostgresStore) RegisterVisit(ctx context.Context, code link.Code, now time.Time) (bool, error) {
	query := `
		UPDATE links
		SET current_clicks = current_clicks + 1,
		    visits = visits + 1,
		    last_visited_at = $2
		WHERE code = $1
		  AND (click_limit IS NULL OR current_clicks < click_limit)
	`

	tag, err := p.pool.Exec(ctx, query, string(code), now)
	if err != nil {
		return false, storeErr("register visit", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*link.Link, error) {
	query := `
		SELECT code, destination_url, created_at, expires_at,
		       current_clicks, visits, last_visited_at
		FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("list links", err)
	}
	defer rows.Close()

	var links []*link.Link

	for rows.Next() {
		l := &link.Link{OwnerID: ownerID}

		err = rows.Scan(
			&l.Code,
			&l.DestinationURL,
			&l.CreatedAt,
			&l.ExpiresAt,
			&l.CurrentClicks,
			&l.Visits,
			&l.LastVisitedAt,
		)
		if err != nil {
			return nil, storeErr("scan link", err)
		}

		links = append(links, l)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("list links", err)
	}

	return links, nil
}

func (p *PostgresStore) Append(ctx context.Context, v *link.Visit) (string, error) {
	query := `
		INSERT INTO visit_logs (id, link_code, visited_at, ip_address, user_agent, email)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		v.ID,
		string(v.LinkCode),
		v.Timestamp,
		nullable(v.IPAddress),
		nullable(v.UserAgent),
		nullable(v.Email),
	)
	if err != nil {
		return "", storeErr("append visit", err)
	}

	return v.ID, nil
}

func (p *PostgresStore) ListByLink(ctx context.Context, code link.Code, limit int) ([]*link.Visit, error) {
	query := `
		SELECT id, link_code, visited_at, ip_address, user_agent, email
		FROM visit_logs
		WHERE link_code = $1
		ORDER BY visited_at DESC
	`

	args := []any{string(code)}

	if limit > 0 {
		query += " LIMIT $2"

		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list visits", err)
	}
	defer rows.Close()

	var visits []*link.Visit

	for rows.Next() {
		var (
			v         link.Visit
			ipAddress *string
			userAgent *string
			email     *string
		)

		err = rows.Scan(&v.ID, &v.LinkCode, &v.Timestamp, &ipAddress, &userAgent, &email)
		if err != nil {
			return nil, storeErr("scan visit", err)
		}

		v.IPAddress = deref(ipAddress)
		v.UserAgent = deref(userAgent)
		v.Email = deref(email)

		visits = append(visits, &v)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("list visits", err)
	}

	return visits, nil
}

// storeErr wraps infrastructure failures so callers can distinguish
// them from ErrNotFound via errors.Is(err, link.ErrStoreUnavailable).
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", link.ErrStoreUnavailable, op, err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func nullableInt(n int) *int {
	if n == link.NoLimit {
		return nil
	}

	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

var (
	_ link.Store    = (*PostgresStore)(nil)
	_ link.VisitLog = (*PostgresStore)(nil)
)

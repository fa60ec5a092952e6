package handlers_test

import (
	"context"
	"errors"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
)

var errMock = errors.New("mock error")

// mockStore lets tests force specific store failures.
type mockStore struct {
	getByCodeErr     error
	createErr        error
	registerVisitErr error
	listByOwnerErr   error
	links            map[link.Code]*link.Link
}

func (m *mockStore) GetByCode(_ context.Context, code link.Code) (*link.Link, error) {
	if m.getByCodeErr != nil {
		return nil, m.getByCodeErr
	}

	l, ok := m.links[code]
	if !ok {
		return nil, link.ErrNotFound
	}

	return l, nil
}

func (m *mockStore) Create(_ context.Context, l *link.Link) error {
	if m.createErr != nil {
		return m.createErr
	}

	if m.links == nil {
		m.links = make(map[link.Code]*link.Link)
	}

	m.links[l.Code] = l

	return nil
}

func (m *mockStore) RegisterVisit(_ context.Context, code link.Code, _ time.Time) (bool, error) {
	if m.registerVisitErr != nil {
		return false, m.registerVisitErr
	}

	if _, ok := m.links[code]; !ok {
		return false, link.ErrNotFound
	}

	return true, nil
}

func (m *mockStore) ListByOwner(_ context.Context, _ string) ([]*link.Link, error) {
	if m.listByOwnerErr != nil {
		return nil, m.listByOwnerErr
	}

	return nil, nil
}

// mockVisitLog forces visit-log failures.
type mockVisitLog struct {
	appendErr error
	listErr   error
	visits    []*link.Visit
}

func (m *mockVisitLog) Append(_ context.Context, v *link.Visit) (string, error) {
	if m.appendErr != nil {
		return "", m.appendErr
	}

	m.visits = append(m.visits, v)

	return "visit-id", nil
}

func (m *mockVisitLog) ListByLink(_ context.Context, _ link.Code, _ int) ([]*link.Visit, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	return m.visits, nil
}

var (
	_ link.Store    = (*mockStore)(nil)
	_ link.VisitLog = (*mockVisitLog)(nil)
)

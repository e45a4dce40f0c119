// Package admin aggregates dashboard figures across the other domains.
package admin

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/reports"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/internal/users"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
)

const newUserWindow = 30 * 24 * time.Hour

type UserStats struct {
	Total    int64                `json:"total"`
	ByRole   map[enums.Role]int64 `json:"byRole"`
	NewUsers int64                `json:"newUsers"`
}

type ReportStats struct {
	Total    int64                        `json:"total"`
	ByStatus map[enums.ReportStatus]int64 `json:"byStatus"`
}

// Stats is the admin dashboard payload.
type Stats struct {
	Users        UserStats    `json:"users"`
	Items        items.Counts `json:"items"`
	Reports      ReportStats  `json:"reports"`
	ActiveStores int64        `json:"activeStores"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	users   *users.Repository
	items   *items.Repository
	reports *reports.Repository
	stores  *stores.Repository
	now     func() time.Time
}

type ServiceParams struct {
	Users   *users.Repository
	Items   *items.Repository
	Reports *reports.Repository
	Stores  *stores.Repository
	Clock   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Users == nil:
		return nil, fmt.Errorf("user repository required")
	case params.Items == nil:
		return nil, fmt.Errorf("item repository required")
	case params.Reports == nil:
		return nil, fmt.Errorf("report repository required")
	case params.Stores == nil:
		return nil, fmt.Errorf("store repository required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{users: params.Users, items: params.Items, reports: params.Reports, stores: params.Stores, now: params.Clock}, nil
}

// Stats runs the independent counts concurrently.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	since := s.now().UTC().Add(-newUserWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		byRole, err := s.users.CountByRole(gctx)
		if err != nil {
			return fmt.Errorf("count users by role: %w", err)
		}
		out.Users.ByRole = byRole
		for _, n := range byRole {
			out.Users.Total += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.users.CountCreatedSince(gctx, since)
		if err != nil {
			return fmt.Errorf("count new users: %w", err)
		}
		out.Users.NewUsers = n
		return nil
	})
	g.Go(func() error {
		counts, err := s.items.Counts(gctx)
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		out.Items = counts
		return nil
	})
	g.Go(func() error {
		byStatus, err := s.reports.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("count reports: %w", err)
		}
		out.Reports.ByStatus = byStatus
		for _, n := range byStatus {
			out.Reports.Total += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.stores.CountActive(gctx)
		if err != nil {
			return fmt.Errorf("count stores: %w", err)
		}
		out.ActiveStores = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin stats")
	}
	return out, nil
}

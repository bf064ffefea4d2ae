package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fanclub-hub/internal/domain"
	"fanclub-hub/internal/store"
)

// ReportLimits caps the slices returned in an admin report. The fetch limit
// bounds how many log entries are read per list; the totals reflect what was
// actually fetched, so very long lists report the cap rather than the true
// length.
type ReportLimits struct {
	MaxUsers   int
	MaxSignups int
	MaxLogins  int
	FetchLimit int
}

// Stats is the aggregate section of an admin report.
type Stats struct {
	TotalUsers          int                           `json:"totalUsers"`
	TotalSignups        int                           `json:"totalSignups"`
	TotalLogins         int                           `json:"totalLogins"`
	MembershipBreakdown map[domain.MembershipTier]int `json:"membershipBreakdown"`
}

// Report is the on-demand aggregate view served to admins. Nothing in it is
// persisted; every call re-scans the store.
type Report struct {
	Stats         Stats                `json:"stats"`
	Users         []domain.User        `json:"users"`
	RecentSignups []domain.SignupEntry `json:"recentSignups"`
	RecentLogins  []domain.LoginEntry  `json:"recentLogins"`
}

// ReportService builds admin reports over user records and activity lists.
type ReportService struct {
	store  store.Store
	limits ReportLimits
}

func NewReportService(st store.Store, limits ReportLimits) *ReportService {
	if limits.MaxUsers <= 0 {
		limits.MaxUsers = 50
	}
	if limits.MaxSignups <= 0 {
		limits.MaxSignups = 20
	}
	if limits.MaxLogins <= 0 {
		limits.MaxLogins = 20
	}
	if limits.FetchLimit <= 0 {
		limits.FetchLimit = 100
	}
	return &ReportService{store: st, limits: limits}
}

// Build reads every user record and the recent slices of the signup and
// login lists, then aggregates. The membership histogram covers all fetched
// users even though the returned user list is capped.
func (s *ReportService) Build(ctx context.Context) (*Report, error) {
	keys, err := s.store.KeysWithPrefix(ctx, userKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("enumerate user keys: %w", err)
	}

	users := make([]domain.User, 0, len(keys))
	breakdown := make(map[domain.MembershipTier]int)
	for _, key := range keys {
		var user domain.User
		if err := s.store.Get(ctx, key, &user); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load user %s: %w", strings.TrimPrefix(key, userKeyPrefix), err)
		}
		users = append(users, user.Redacted())

		tier := user.Membership
		if tier == "" {
			tier = domain.MembershipNone
		}
		breakdown[tier]++
	}

	fetch := int64(s.limits.FetchLimit)
	var signups []domain.SignupEntry
	if err := s.store.ListRange(ctx, domain.ListSignups, 0, fetch-1, &signups); err != nil {
		return nil, fmt.Errorf("read signups: %w", err)
	}
	var logins []domain.LoginEntry
	if err := s.store.ListRange(ctx, domain.ListLogins, 0, fetch-1, &logins); err != nil {
		return nil, fmt.Errorf("read logins: %w", err)
	}

	report := &Report{
		Stats: Stats{
			TotalUsers:          len(users),
			TotalSignups:        len(signups),
			TotalLogins:         len(logins),
			MembershipBreakdown: breakdown,
		},
		Users:         capUsers(users, s.limits.MaxUsers),
		RecentSignups: signups[:min(len(signups), s.limits.MaxSignups)],
		RecentLogins:  logins[:min(len(logins), s.limits.MaxLogins)],
	}
	return report, nil
}

func capUsers(users []domain.User, max int) []domain.User {
	if len(users) > max {
		return users[:max]
	}
	return users
}

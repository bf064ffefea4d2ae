package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fanclub-hub/internal/domain"
	"fanclub-hub/internal/store"
)

// ActivityLogger appends timestamped events to the per-category activity
// lists. Entries are prepended, so every list reads most-recent-first.
type ActivityLogger struct {
	store store.Store
	now   func() time.Time
}

func NewActivityLogger(st store.Store) *ActivityLogger {
	return &ActivityLogger{
		store: st,
		now:   time.Now,
	}
}

func (l *ActivityLogger) LogSignup(ctx context.Context, user domain.User, ip string) error {
	entry := domain.SignupEntry{
		ID:         uuid.NewString(),
		Email:      user.Email,
		Name:       user.Name,
		Membership: user.Membership,
		Timestamp:  l.now().UTC(),
		IP:         ip,
	}
	if err := l.store.ListPrepend(ctx, domain.ListSignups, entry); err != nil {
		return fmt.Errorf("log signup: %w", err)
	}
	return nil
}

func (l *ActivityLogger) LogLogin(ctx context.Context, email, ip string) error {
	entry := domain.LoginEntry{
		ID:        uuid.NewString(),
		Email:     email,
		Timestamp: l.now().UTC(),
		IP:        ip,
	}
	if err := l.store.ListPrepend(ctx, domain.ListLogins, entry); err != nil {
		return fmt.Errorf("log login: %w", err)
	}
	return nil
}

func (l *ActivityLogger) LogPayment(ctx context.Context, email, paymentMethod string, at time.Time, ip string) error {
	entry := domain.PaymentEntry{
		ID:            uuid.NewString(),
		Email:         email,
		PaymentMethod: paymentMethod,
		Timestamp:     at,
		IP:            ip,
	}
	if err := l.store.ListPrepend(ctx, domain.ListPayments, entry); err != nil {
		return fmt.Errorf("log payment: %w", err)
	}
	return nil
}

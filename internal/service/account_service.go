package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanclub-hub/internal/credential"
	"fanclub-hub/internal/domain"
	"fanclub-hub/internal/store"
	"fanclub-hub/internal/validate"
)

var (
	// ErrMissingField indicates a required request field was absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidEmail indicates the email failed shape validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPassword indicates the password failed strength validation.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrAlreadyExists is returned when signing up with an email that
	// already has a record.
	ErrAlreadyExists = errors.New("account already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// userKeyPrefix namespaces user records in the store.
const userKeyPrefix = "user:"

// UserKey returns the record-store key for a user's email.
func UserKey(email string) string {
	return userKeyPrefix + email
}

// AccountService describes the membership account use cases.
type AccountService interface {
	Signup(ctx context.Context, name, email, password string, membership domain.MembershipTier, ip string) (*domain.PublicUser, error)
	Login(ctx context.Context, email, password, ip string) (*domain.PublicUser, error)
	LogPayment(ctx context.Context, email, paymentMethod string, at time.Time, ip string) error
}

type accountService struct {
	store    store.Store
	activity *ActivityLogger
	now      func() time.Time
}

func NewAccountService(st store.Store, activity *ActivityLogger) AccountService {
	return &accountService{
		store:    st,
		activity: activity,
		now:      time.Now,
	}
}

func (s *accountService) Signup(ctx context.Context, name, email, password string, membership domain.MembershipTier, ip string) (*domain.PublicUser, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}
	if !validate.Email(email) {
		return nil, ErrInvalidEmail
	}
	if !validate.Password(password) {
		return nil, ErrInvalidPassword
	}
	if !domain.ValidMembership(membership) {
		membership = domain.MembershipNone
	}

	// Existence check then write; not atomic, so two concurrent signups for
	// the same email can both land, with the later write winning.
	var existing domain.User
	err := s.store.Get(ctx, UserKey(email), &existing)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	user := domain.User{
		Name:       name,
		Email:      email,
		Credential: credential.Encode(password),
		Membership: membership,
		CreatedAt:  s.now().UTC(),
		Verified:   false,
	}

	if err := s.store.Set(ctx, UserKey(email), user); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}

	if err := s.activity.LogSignup(ctx, user, ip); err != nil {
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

func (s *accountService) Login(ctx context.Context, email, password, ip string) (*domain.PublicUser, error) {
	if email == "" || password == "" {
		return nil, ErrMissingField
	}

	var user domain.User
	if err := s.store.Get(ctx, UserKey(email), &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !credential.Verify(password, user.Credential) {
		return nil, ErrInvalidCredentials
	}

	if err := s.activity.LogLogin(ctx, email, ip); err != nil {
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

func (s *accountService) LogPayment(ctx context.Context, email, paymentMethod string, at time.Time, ip string) error {
	if email == "" || paymentMethod == "" {
		return ErrMissingField
	}
	if at.IsZero() {
		at = s.now().UTC()
	}
	// No check that the email belongs to a known user; payment selections
	// are accepted for any email string, matching the original behavior.
	return s.activity.LogPayment(ctx, email, paymentMethod, at, ip)
}

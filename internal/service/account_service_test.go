package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fanclub-hub/internal/domain"
	"fanclub-hub/internal/store"
	"fanclub-hub/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestAccounts(t *testing.T) (AccountService, store.Store) {
	t.Helper()
	st := newTestStore(t)
	return NewAccountService(st, NewActivityLogger(st)), st
}

func TestSignupThenLogin(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	created, err := accounts.Signup(ctx, "Alice", "alice@x.com", "Passw0rd", domain.MembershipVIP, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "alice@x.com", created.Email)
	assert.Equal(t, domain.MembershipVIP, created.Membership)

	logged, err := accounts.Login(ctx, "alice@x.com", "Passw0rd", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, created, logged)
}

func TestSignupStoresNoPlaintextPassword(t *testing.T) {
	accounts, st := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Signup(ctx, "Alice", "alice@x.com", "Passw0rd", domain.MembershipNone, "")
	require.NoError(t, err)

	var stored domain.User
	require.NoError(t, st.Get(ctx, UserKey("alice@x.com"), &stored))
	assert.NotEmpty(t, stored.Credential)
	assert.NotEqual(t, "Passw0rd", stored.Credential)
	assert.False(t, stored.Verified)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestSignupValidation(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		userName   string
		email      string
		password   string
		wantErr    error
	}{
		{"missing name", "", "a@b.co", "abc12345", ErrMissingField},
		{"missing email", "A", "", "abc12345", ErrMissingField},
		{"missing password", "A", "a@b.co", "", ErrMissingField},
		{"bad email", "A", "not-an-email", "abc12345", ErrInvalidEmail},
		{"weak password", "A", "a@b.co", "abcdefgh", ErrInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accounts.Signup(ctx, tc.userName, tc.email, tc.password, domain.MembershipNone, "")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Signup(ctx, "Alice", "alice@x.com", "Passw0rd", domain.MembershipNone, "")
	require.NoError(t, err)

	// Different password, same email: still a duplicate.
	_, err = accounts.Signup(ctx, "Mallory", "alice@x.com", "0therPass", domain.MembershipVVIP, "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSignupUnknownMembershipDefaultsToNone(t *testing.T) {
	accounts, _ := newTestAccounts(t)

	created, err := accounts.Signup(context.Background(), "Alice", "alice@x.com", "Passw0rd", "platinum", "")
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipNone, created.Membership)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	accounts, _ := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Signup(ctx, "Alice", "alice@x.com", "Passw0rd", domain.MembershipNone, "")
	require.NoError(t, err)

	_, unknownErr := accounts.Login(ctx, "nobody@x.com", "Passw0rd", "")
	_, wrongErr := accounts.Login(ctx, "alice@x.com", "wr0ngpass", "")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestLoginMissingFields(t *testing.T) {
	accounts, _ := newTestAccounts(t)

	_, err := accounts.Login(context.Background(), "", "Passw0rd", "")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = accounts.Login(context.Background(), "alice@x.com", "", "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestSignupAndLoginAppendActivity(t *testing.T) {
	accounts, st := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Signup(ctx, "Alice", "alice@x.com", "Passw0rd", domain.MembershipVIP, "203.0.113.9")
	require.NoError(t, err)
	_, err = accounts.Login(ctx, "alice@x.com", "Passw0rd", "203.0.113.9")
	require.NoError(t, err)

	var signups []domain.SignupEntry
	require.NoError(t, st.ListRange(ctx, domain.ListSignups, 0, 99, &signups))
	require.Len(t, signups, 1)
	assert.Equal(t, "alice@x.com", signups[0].Email)
	assert.Equal(t, "Alice", signups[0].Name)
	assert.Equal(t, domain.MembershipVIP, signups[0].Membership)
	assert.Equal(t, "203.0.113.9", signups[0].IP)
	assert.NotEmpty(t, signups[0].ID)

	var logins []domain.LoginEntry
	require.NoError(t, st.ListRange(ctx, domain.ListLogins, 0, 99, &logins))
	require.Len(t, logins, 1)
	assert.Equal(t, "alice@x.com", logins[0].Email)
}

func TestLogPayment(t *testing.T) {
	accounts, st := newTestAccounts(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// Email need not belong to an existing user.
	require.NoError(t, accounts.LogPayment(ctx, "stranger@x.com", "Bitcoin", at, "203.0.113.9"))

	var payments []domain.PaymentEntry
	require.NoError(t, st.ListRange(ctx, domain.ListPayments, 0, 99, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "stranger@x.com", payments[0].Email)
	assert.Equal(t, "Bitcoin", payments[0].PaymentMethod)
	assert.Equal(t, at, payments[0].Timestamp)
}

func TestLogPaymentDefaultsTimestamp(t *testing.T) {
	accounts, st := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, accounts.LogPayment(ctx, "a@b.co", "PayPal", time.Time{}, ""))

	var payments []domain.PaymentEntry
	require.NoError(t, st.ListRange(ctx, domain.ListPayments, 0, 99, &payments))
	require.Len(t, payments, 1)
	assert.WithinDuration(t, time.Now().UTC(), payments[0].Timestamp, time.Minute)
}

func TestLogPaymentMissingFields(t *testing.T) {
	accounts, _ := newTestAccounts(t)

	err := accounts.LogPayment(context.Background(), "", "Bitcoin", time.Time{}, "")
	assert.ErrorIs(t, err, ErrMissingField)

	err = accounts.LogPayment(context.Background(), "a@b.co", "", time.Time{}, "")
	assert.ErrorIs(t, err, ErrMissingField)
}

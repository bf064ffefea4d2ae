package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fanclub-hub/internal/domain"
)

type capturingArchiver struct {
	batches map[string][]json.RawMessage
}

func (a *capturingArchiver) Archive(_ context.Context, list string, entries []json.RawMessage) (string, error) {
	if a.batches == nil {
		a.batches = make(map[string][]json.RawMessage)
	}
	a.batches[list] = append(a.batches[list], entries...)
	return "test://" + list, nil
}

func TestSweepTrimsAndArchivesOverflow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		entry := domain.LoginEntry{ID: fmt.Sprintf("login-%d", i), Email: "a@b.co", Timestamp: time.Now().UTC()}
		require.NoError(t, st.ListPrepend(ctx, domain.ListLogins, entry))
	}

	archiver := &capturingArchiver{}
	r := NewRetention(RetentionConfig{MaxEntries: 3}, st, archiver)
	require.NoError(t, r.Sweep(ctx))

	n, err := st.ListLen(ctx, domain.ListLogins)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// The four oldest entries went to the archive.
	require.Len(t, archiver.batches[domain.ListLogins], 4)
	var oldest domain.LoginEntry
	require.NoError(t, json.Unmarshal(archiver.batches[domain.ListLogins][3], &oldest))
	assert.Equal(t, "login-0", oldest.ID)

	// The newest entries survived in the store.
	var kept []domain.LoginEntry
	require.NoError(t, st.ListRange(ctx, domain.ListLogins, 0, 99, &kept))
	require.Len(t, kept, 3)
	assert.Equal(t, "login-6", kept[0].ID)
	assert.Equal(t, "login-4", kept[2].ID)
}

func TestSweepLeavesShortListsAlone(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.ListPrepend(ctx, domain.ListSignups, domain.SignupEntry{ID: "s-1"}))

	archiver := &capturingArchiver{}
	r := NewRetention(RetentionConfig{MaxEntries: 10}, st, archiver)
	require.NoError(t, r.Sweep(ctx))

	n, err := st.ListLen(ctx, domain.ListSignups)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, archiver.batches)
}

func TestSweepWithoutArchiverDrops(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, st.ListPrepend(ctx, domain.ListPayments, domain.PaymentEntry{ID: fmt.Sprintf("p-%d", i)}))
	}

	r := NewRetention(RetentionConfig{MaxEntries: 2, AllowDrop: true}, st, nil)
	require.NoError(t, r.Sweep(ctx))

	n, err := st.ListLen(ctx, domain.ListPayments)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStartRefusesSilentDrop(t *testing.T) {
	st := newTestStore(t)

	r := NewRetention(RetentionConfig{MaxEntries: 10}, st, nil)
	assert.Error(t, r.Start(context.Background()))
}

func TestStartRequiresPositiveCap(t *testing.T) {
	st := newTestStore(t)

	r := NewRetention(RetentionConfig{}, st, &capturingArchiver{})
	assert.Error(t, r.Start(context.Background()))
}

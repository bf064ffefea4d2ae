package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fanclub-hub/internal/archive"
	"fanclub-hub/internal/domain"
	"fanclub-hub/internal/store"
)

// RetentionConfig controls the background trimming of activity lists.
// MaxEntries is the number of entries each list keeps; lists are unbounded
// when the worker is not running.
type RetentionConfig struct {
	MaxEntries int64
	Interval   time.Duration
	// AllowDrop permits trimming without an archiver, discarding overflow.
	AllowDrop bool
	Logger    *logrus.Logger
}

// Retention periodically archives and trims the overflow of each activity
// list. Upload happens before trim, so a crash between the two duplicates
// entries in the archive rather than losing them.
type Retention struct {
	cfg      RetentionConfig
	store    store.Store
	archiver archive.Archiver

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var retentionLists = []string{domain.ListSignups, domain.ListLogins, domain.ListPayments}

func NewRetention(cfg RetentionConfig, st store.Store, archiver archive.Archiver) *Retention {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Retention{
		cfg:      cfg,
		store:    st,
		archiver: archiver,
	}
}

func (r *Retention) Start(ctx context.Context) error {
	if r.cfg.MaxEntries <= 0 {
		return fmt.Errorf("retention max entries must be positive")
	}
	if r.archiver == nil && !r.cfg.AllowDrop {
		return fmt.Errorf("retention without an archiver would drop entries; configure an archive bucket or allow dropping")
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
	r.cfg.Logger.Infof("retention worker started, cap %d, every %s", r.cfg.MaxEntries, r.cfg.Interval)
	return nil
}

func (r *Retention) Shutdown() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.cfg.Logger.Info("retention worker stopped")
}

func (r *Retention) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.cfg.Logger.WithError(err).Error("retention sweep failed")
			}
		}
	}
}

// Sweep trims every activity list down to the configured cap, archiving the
// overflow first when an archiver is configured.
func (r *Retention) Sweep(ctx context.Context) error {
	for _, list := range retentionLists {
		if err := r.sweepList(ctx, list); err != nil {
			return fmt.Errorf("sweep %s: %w", list, err)
		}
	}
	return nil
}

func (r *Retention) sweepList(ctx context.Context, list string) error {
	n, err := r.store.ListLen(ctx, list)
	if err != nil {
		return err
	}
	if n <= r.cfg.MaxEntries {
		return nil
	}

	if r.archiver != nil {
		// The overflow is the oldest part of the list, past the cap.
		var overflow []json.RawMessage
		if err := r.store.ListRange(ctx, list, r.cfg.MaxEntries, n-1, &overflow); err != nil {
			return err
		}
		location, err := r.archiver.Archive(ctx, list, overflow)
		if err != nil {
			return err
		}
		r.cfg.Logger.Infof("archived %d %s entries to %s", len(overflow), list, location)
	}

	if err := r.store.ListTrim(ctx, list, r.cfg.MaxEntries); err != nil {
		return err
	}
	r.cfg.Logger.Infof("trimmed %s to %d entries", list, r.cfg.MaxEntries)
	return nil
}

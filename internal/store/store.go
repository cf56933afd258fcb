// Package store provides the in-process artifact store.
// This package is internal and should not be imported by external projects.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diacritfix/diacritfix/types"
)

// PaymentState is the payment state of a stored artifact record.
type PaymentState string

const (
	StatePending PaymentState = "pending"
	StatePaid    PaymentState = "paid"
)

// Record is one processed artifact awaiting payment and delivery. Content and
// OriginalName are immutable after creation; only State changes, and only
// through MarkPaid. The record belongs to the Store from Put until it is
// removed by GetAndRemove or expiry.
type Record struct {
	ID           string
	Content      []byte
	OriginalName string
	CreatedAt    time.Time
	State        PaymentState
}

// Config configures the store.
type Config struct {
	// TTL is the retention window measured from record creation. It is
	// deliberately not re-based when payment is confirmed: a record paid
	// after nine minutes has one minute left to be fetched.
	TTL time.Duration `yaml:"ttl" env:"TTL"`

	// SweepInterval is how often the background sweep removes expired
	// records. Expiry is also checked lazily on every access, so the sweep
	// only bounds memory held by records nobody touches again.
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Store holds artifact records under a single mutex. Every operation
// completes inside one critical section and never blocks on I/O, which is
// what makes GetAndRemove atomic under arbitrary interleaving: two
// concurrent calls for the same id can never both observe a present record.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source. Used by tests to simulate
// TTL expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}
	s := &Store{
		records: make(map[string]*Record),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With(zap.String("component", "store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put inserts a new record under its id. Ids are generated uniquely, so a
// collision means id generation is broken; it is reported as an invariant
// violation, not a user error.
func (s *Store) Put(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		s.logger.Error("duplicate artifact id", zap.String("id", rec.ID))
		return types.NewError(types.ErrDuplicateID, "artifact id already present")
	}
	if rec.State == "" {
		rec.State = StatePending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.records[rec.ID] = rec
	return nil
}

// GetAndRemove atomically looks up and deletes the record in one step. The
// second return is false if the id was never inserted, already delivered,
// or expired; callers cannot distinguish these cases.
func (s *Store) GetAndRemove(id string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookupLocked(id)
	if !ok {
		return nil, false
	}
	delete(s.records, id)
	return rec, true
}

// PeekStatus returns the payment state of the record without consuming it.
func (s *Store) PeekStatus(id string) (PaymentState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookupLocked(id)
	if !ok {
		return "", false
	}
	return rec.State, true
}

// MarkPaid transitions a pending record to paid. Marking an already-paid
// record again is a no-op success, so payment confirmations are idempotent.
func (s *Store) MarkPaid(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookupLocked(id)
	if !ok {
		return false
	}
	rec.State = StatePaid
	return true
}

// ExpireSweep removes all records whose TTL has elapsed at the given time
// and returns how many were removed.
func (s *Store) ExpireSweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		if s.expired(rec, now) {
			delete(s.records, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired artifacts swept", zap.Int("removed", removed))
	}
	return removed
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// RunSweeper runs the periodic expiry sweep until ctx is cancelled. The
// onExpired callback, if non-nil, receives the number of records removed
// by each sweep that removed any.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onExpired func(int)) {
	if interval <= 0 {
		interval = DefaultConfig().SweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.ExpireSweep(s.now()); removed > 0 && onExpired != nil {
				onExpired(removed)
			}
		}
	}
}

// lookupLocked returns the live record for id, applying lazy expiry: an
// expired record is deleted on access and treated as absent. Callers must
// hold s.mu.
func (s *Store) lookupLocked(id string) (*Record, bool) {
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	if s.expired(rec, s.now()) {
		delete(s.records, id)
		return nil, false
	}
	return rec, true
}

func (s *Store) expired(rec *Record, now time.Time) bool {
	return now.Sub(rec.CreatedAt) >= s.ttl
}

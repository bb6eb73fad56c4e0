package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"housesplit/internal/cache"
	"housesplit/internal/core"
	"housesplit/internal/ledger"
	applog "housesplit/internal/log"
	"housesplit/internal/metrics"
	"housesplit/internal/slots"
	"housesplit/internal/storage"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrIncompleteInput is returned when one of the three blocks is blank.
	ErrIncompleteInput = errors.New("families, stays and expenses must all be filled in")
	// ErrInternal replaces any unexpected failure inside a calculation.
	ErrInternal = errors.New("error processing data, please check your data format and try again")
)

// SyncPublisher announces stored snapshots to the sheets sync worker.
type SyncPublisher interface {
	PublishSnapshotSync(ctx context.Context, snapshotID int64) error
}

// Options configures a SplitService. Every field is optional.
type Options struct {
	// Backend names the store in logs and metrics.
	Backend   string
	Publisher SyncPublisher
	Metrics   *metrics.Metrics
	Cache     cache.Cache[*ledger.Result]
}

// LoadResult is the outcome of loading saved blocks. When nothing usable is
// stored the default sample blocks are returned with Warning set.
type LoadResult struct {
	Blocks    core.Blocks
	FromStore bool
	Warning   string
}

// SplitService runs calculations and moves blocks in and out of the store.
type SplitService struct {
	store     slots.Store
	backend   string
	publisher SyncPublisher
	metrics   *metrics.Metrics
	results   cache.Cache[*ledger.Result]
	loads     singleflight.Group
	calculate func(core.Blocks) (*ledger.Result, error)
}

func NewSplitService(store slots.Store, opts Options) *SplitService {
	backend := opts.Backend
	if backend == "" {
		backend = "unknown"
	}
	return &SplitService{
		store:     store,
		backend:   backend,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		results:   opts.Cache,
		calculate: ledger.Calculate,
	}
}

// Calculate runs one calculation cycle. Validation failures come back as the
// typed errors from core; anything unexpected becomes ErrInternal. Every
// caller gets its own copy of the result, cached or not.
func (s *SplitService) Calculate(ctx context.Context, b core.Blocks) (res *ledger.Result, err error) {
	if b.Incomplete() {
		return nil, ErrIncompleteInput
	}

	key := cache.Digest(b.Families, b.Stays, b.Expenses)
	if s.results != nil {
		if cached, ok := s.results.Get(key); ok {
			s.metrics.ObserveCacheLookup(true)
			return cached.Clone(), nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Calculation panicked", "component", "split", "panic", fmt.Sprint(r))
			res, err = nil, ErrInternal
		}
		transfers := 0
		if res != nil {
			transfers = len(res.Settlements)
		}
		s.metrics.ObserveCalculation(outcomeOf(err), time.Since(start), transfers)
	}()

	res, err = s.calculate(b)
	if err != nil {
		if core.IsValidation(err) {
			slog.InfoContext(ctx, "Calculation rejected input", "component", "split", "error", err)
			return nil, err
		}
		slog.ErrorContext(ctx, "Calculation failed", "component", "split", "error", err)
		return nil, ErrInternal
	}

	if s.results != nil {
		s.results.Set(key, res.Clone())
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogCalculation(ctx, len(res.Families), len(res.Settlements), res.TotalNights, res.TotalExpenses)
	return res, nil
}

func outcomeOf(err error) string {
	var um *core.UnknownMemberError
	var uf *core.UnknownFamilyError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &um):
		return metrics.OutcomeUnknownMember
	case errors.As(err, &uf):
		return metrics.OutcomeUnknownFamily
	case errors.Is(err, core.ErrNoStays):
		return metrics.OutcomeNoStays
	case errors.Is(err, core.ErrNightsOverflow):
		return metrics.OutcomeNightsOverflow
	default:
		return metrics.OutcomeInternalError
	}
}

// Load returns the saved blocks, or the defaults with a warning when the
// store is empty or unreachable. Concurrent calls share one store read.
func (s *SplitService) Load(ctx context.Context) LoadResult {
	v, _, _ := s.loads.Do("load", func() (interface{}, error) {
		start := time.Now()
		b, err := s.store.Load(ctx)
		s.metrics.ObserveStorage(s.backend, "load", time.Since(start), ignoreNoData(err))

		switch {
		case errors.Is(err, slots.ErrNoSavedData):
			slog.InfoContext(ctx, "No saved data, using defaults", "component", "split", "backend", s.backend)
			return LoadResult{Blocks: core.DefaultBlocks()}, nil
		case err != nil:
			slog.WarnContext(ctx, "Could not load saved data, using defaults",
				"component", "split", "backend", s.backend, "error", err)
			return LoadResult{
				Blocks:  core.DefaultBlocks(),
				Warning: fmt.Sprintf("Could not load saved data: %v", err),
			}, nil
		}
		return LoadResult{Blocks: withDefaults(b), FromStore: true}, nil
	})
	return v.(LoadResult)
}

// withDefaults replaces an entirely blank save with the sample data.
func withDefaults(b core.Blocks) core.Blocks {
	if b == (core.Blocks{}) {
		return core.DefaultBlocks()
	}
	return b
}

func ignoreNoData(err error) error {
	if errors.Is(err, slots.ErrNoSavedData) {
		return nil
	}
	return err
}

// Save stores the blocks verbatim. When the store is the SQLite snapshot
// repository a sync message is published; publish failures are logged only,
// since the snapshot is already safe locally.
func (s *SplitService) Save(ctx context.Context, b core.Blocks) (string, error) {
	start := time.Now()
	ref, err := s.store.Save(ctx, b)
	s.metrics.ObserveStorage(s.backend, "save", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("save blocks: %w", err)
	}

	slog.InfoContext(ctx, "Blocks saved", "component", "split", "backend", s.backend, "store_ref", ref)

	if id, ok := storage.ParseRef(ref); ok && s.publisher != nil {
		if err := s.publisher.PublishSnapshotSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", "snapshot_id", id, "error", err)
		}
	}
	return ref, nil
}

// Ping reports whether the underlying store is reachable, for stores that can tell.
func (s *SplitService) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

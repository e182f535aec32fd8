package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"keksindex/pkg/contracts/domain"
)

// DiagnosticsSink receives the counters of every store build.
type DiagnosticsSink interface {
	StoreBuilt(ctx context.Context, diag domain.StoreDiagnostics)
}

// DiagnosticsSinkFunc adapts a function to DiagnosticsSink.
type DiagnosticsSinkFunc func(ctx context.Context, diag domain.StoreDiagnostics)

// StoreBuilt implements DiagnosticsSink.
func (f DiagnosticsSinkFunc) StoreBuilt(ctx context.Context, diag domain.StoreDiagnostics) {
	f(ctx, diag)
}

// Loader builds the SeriesStore on first use and keeps it until Invalidate is called.
// Concurrent first loads share a single build.
type Loader struct {
	source Source
	sink   DiagnosticsSink
	logger *slog.Logger

	mu         sync.RWMutex
	store      *SeriesStore
	generation uint64
	group      singleflight.Group
}

// NewLoader creates a loader for source. sink may be nil.
func NewLoader(source Source, sink DiagnosticsSink, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source: source,
		sink:   sink,
		logger: logger.With(slog.String("component", "series_loader")),
	}
}

// Source returns the underlying source.
func (l *Loader) Source() Source { return l.source }

// Load returns the memoized store, building it if necessary.
func (l *Loader) Load(ctx context.Context) (*SeriesStore, error) {
	if s, ok := l.Current(); ok {
		return s, nil
	}

	v, err, _ := l.group.Do("store", func() (interface{}, error) {
		l.mu.RLock()
		if l.store != nil {
			s := l.store
			l.mu.RUnlock()
			return s, nil
		}
		gen := l.generation
		l.mu.RUnlock()

		// Coalesced callers share this build, so one caller going away must not fail the rest.
		store, err := l.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		// An Invalidate during the build wins; the next Load rebuilds.
		if l.generation == gen {
			l.store = store
		}
		l.mu.Unlock()
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SeriesStore), nil
}

// Current returns the memoized store without building it.
func (l *Loader) Current() (*SeriesStore, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store, l.store != nil
}

// Invalidate drops the memoized store.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.store = nil
	l.generation++
	l.mu.Unlock()
	l.logger.Info("Series store invalidated", slog.String("source", l.source.Name()))
}

// Reload invalidates the store and builds it again.
func (l *Loader) Reload(ctx context.Context) (*SeriesStore, error) {
	l.Invalidate()
	return l.Load(ctx)
}

func (l *Loader) build(ctx context.Context) (*SeriesStore, error) {
	l.logger.InfoContext(ctx, "Building series store", slog.String("source", l.source.Name()))

	records, err := l.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	store, err := BuildStore(l.source.Name(), records)
	if err != nil {
		l.logger.ErrorContext(ctx, "Series store schema rejected",
			slog.String("source", l.source.Name()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build series store from %s: %w", l.source.Name(), err)
	}

	diag := store.Diagnostics()
	l.logger.InfoContext(ctx, "Series store built",
		slog.String("value_column", diag.ValueColumn),
		slog.Int("rows_read", diag.RowsRead),
		slog.Int("rows_kept", diag.RowsKept),
		slog.Int("dropped_period", diag.DroppedPeriod),
		slog.Int("non_numeric_values", diag.NonNumericValues),
		slog.Int("regions", diag.Regions),
		slog.Float64("duration_seconds", diag.DurationSeconds))

	if l.sink != nil {
		l.sink.StoreBuilt(ctx, diag)
	}
	return store, nil
}

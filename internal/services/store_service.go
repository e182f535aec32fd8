package services

import (
	"context"
	"fmt"
	"log/slog"

	"keksindex/internal/infrastructure"
	"keksindex/pkg/contracts"
	"keksindex/pkg/contracts/domain"
	"keksindex/pkg/contracts/events"
)

// StoreService exposes the series store lifecycle.
type StoreService struct {
	store       StoreProvider
	broadcaster Broadcaster
	sourceName  string
	logger      *slog.Logger
}

// NewStoreService creates a store service. broadcaster may be nil.
func NewStoreService(store StoreProvider, broadcaster Broadcaster, sourceName string, logger *slog.Logger) *StoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreService{
		store:       store,
		broadcaster: broadcaster,
		sourceName:  sourceName,
		logger:      logger.With(slog.String("component", "store_service")),
	}
}

// Preload builds the store ahead of the first request. Startup has no request,
// so the build gets its own trace ID.
func (s *StoreService) Preload(ctx context.Context) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	if _, err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Loaded reports whether a store is memoized.
func (s *StoreService) Loaded() bool {
	_, ok := s.store.Current()
	return ok
}

// Diagnostics returns the build report of the current store, loading it if needed.
func (s *StoreService) Diagnostics(ctx context.Context) (domain.StoreDiagnostics, error) {
	store, err := s.store.Load(ctx)
	if err != nil {
		return domain.StoreDiagnostics{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return store.Diagnostics(), nil
}

// Reload rebuilds the store from its source and announces the outcome to clients.
func (s *StoreService) Reload(ctx context.Context) (domain.StoreDiagnostics, error) {
	s.logger.InfoContext(ctx, "Reloading series store", slog.String("source", s.sourceName))

	store, err := s.store.Reload(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Series store reload failed",
			slog.String("source", s.sourceName),
			slog.String("error", err.Error()))
		s.broadcast(ctx, events.MessageTypeStoreFailed, events.StoreFailed{
			Source: s.sourceName,
			Error:  err.Error(),
		})
		return domain.StoreDiagnostics{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	diag := store.Diagnostics()
	s.broadcast(ctx, events.MessageTypeStoreReloaded, events.StoreReloaded{Diagnostics: diag})
	return diag, nil
}

// Status is the snapshot sent to newly connected WebSocket clients.
func (s *StoreService) Status() events.SystemStatus {
	status := events.SystemStatus{
		Status:      "loading",
		Version:     contracts.Version,
		StoreLoaded: s.Loaded(),
	}
	if status.StoreLoaded {
		status.Status = "ready"
	}
	return status
}

func (s *StoreService) broadcast(ctx context.Context, t events.MessageType, data interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastWithTrace(ctx, t, data)
}

package services

import (
	"context"

	"keksindex/internal/dataprocessing"
	"keksindex/pkg/contracts/events"
)

// StoreProvider gives access to the memoized series store. *dataprocessing.Loader implements it.
type StoreProvider interface {
	Load(ctx context.Context) (*dataprocessing.SeriesStore, error)
	Current() (*dataprocessing.SeriesStore, bool)
	Reload(ctx context.Context) (*dataprocessing.SeriesStore, error)
}

// Broadcaster pushes events to connected clients. *websocket.Hub implements it.
type Broadcaster interface {
	BroadcastWithTrace(ctx context.Context, messageType events.MessageType, data interface{})
}

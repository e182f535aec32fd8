// Package events contains the WebSocket message contracts pushed to dashboard clients.
package events

import (
	"time"

	"keksindex/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeStoreReloaded is sent after the series store has been rebuilt.
	MessageTypeStoreReloaded MessageType = "store:reloaded"
	// MessageTypeStoreFailed is sent when a reload could not produce a store.
	MessageTypeStoreFailed MessageType = "store:failed"

	// System messages
	MessageTypeSystemStatus MessageType = "system:status"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// StoreReloaded carries the diagnostics of a freshly built store.
type StoreReloaded struct {
	Diagnostics domain.StoreDiagnostics `json:"diagnostics"`
}

// StoreFailed carries the reason a reload failed. The previous store stays unloaded.
type StoreFailed struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// SystemStatus is sent to a client right after it connects.
type SystemStatus struct {
	Status      string `json:"status"` // ready|loading
	Version     string `json:"version"`
	StoreLoaded bool   `json:"store_loaded"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Package events contains the event contract definitions for WebSocket
// communication between the analytics service and connected dashboards.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDatasetRefreshed announces that a new dataset was loaded
	// and all cached analysis for the previous dataset is gone.
	MessageTypeDatasetRefreshed MessageType = "dataset:refreshed"

	// System messages
	MessageTypeSystemStatus MessageType = "system:status"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`       // Unique message ID
	Type      MessageType `json:"type"`               // Message type
	Timestamp time.Time   `json:"timestamp"`          // Message timestamp
	TraceID   string      `json:"trace_id,omitempty"` // Request trace ID
}

// Message represents a complete WebSocket message
type Message struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"` // Message payload
}

// DatasetRefreshed is the payload for dataset:refreshed events. Dashboards
// re-fetch their views when they receive one.
type DatasetRefreshed struct {
	DatasetID   string    `json:"dataset_id"`
	Fingerprint string    `json:"fingerprint"`
	Source      string    `json:"source"`
	RowCount    int       `json:"row_count"`
	AgentCount  int       `json:"agent_count"`
	WeekCount   int       `json:"week_count"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// SystemStatus is the payload for system:status events, sent to each client
// on connect.
type SystemStatus struct {
	Status        string `json:"status"` // healthy|degraded
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	DatasetLoaded bool   `json:"dataset_loaded"`
}

// ErrorData is the payload for error messages.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

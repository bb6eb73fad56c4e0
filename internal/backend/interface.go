package backend

import (
	"context"

	"housesplit/internal/amqp"
	"housesplit/internal/services"
	"housesplit/internal/slots"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the block store and optional collaborators.
type BackendResult struct {
	Store slots.Store
	Type  BackendType
	// Publisher is set for the sqlite backend when AMQP is reachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Close releases everything the backend opened.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// SyncPublisher returns the publisher as an interface, or nil when AMQP is off.
func (r *BackendResult) SyncPublisher() services.SyncPublisher {
	if r == nil || r.Publisher == nil {
		return nil
	}
	return r.Publisher
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

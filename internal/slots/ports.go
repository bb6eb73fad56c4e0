// Package slots defines how the three raw text blocks are persisted. The
// calculation never touches storage; callers load blocks through these
// ports and hand plain text to the ledger.
package slots

import (
	"context"
	"errors"

	"housesplit/internal/core"
)

// ErrNoSavedData is returned by Load when nothing has been saved yet.
var ErrNoSavedData = errors.New("no saved data")

// Ports for outbound adapters.
type (
	BlockReader interface {
		// Load returns the most recently saved blocks.
		Load(ctx context.Context) (core.Blocks, error)
	}

	BlockWriter interface {
		// Save stores the blocks verbatim and returns a storage reference.
		Save(ctx context.Context, b core.Blocks) (ref string, err error)
	}

	Store interface {
		BlockReader
		BlockWriter
	}
)

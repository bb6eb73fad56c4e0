package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"housesplit/internal/core"
	"housesplit/internal/slots"
)

var _ slots.Store = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	blocks  core.Blocks
	saved   bool
	version int
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds the store from seed_families.txt, seed_stays.txt and
// seed_expenses.txt under base. Missing files leave the store empty so that
// Load reports slots.ErrNoSavedData.
func NewFromFiles(base string) *Store {
	s := New()
	b := core.Blocks{
		Families: readText(filepath.Join(base, "seed_families.txt")),
		Stays:    readText(filepath.Join(base, "seed_stays.txt")),
		Expenses: readText(filepath.Join(base, "seed_expenses.txt")),
	}
	if b != (core.Blocks{}) {
		s.blocks = b
		s.saved = true
	}
	return s
}

// Load returns the last saved blocks.
func (s *Store) Load(_ context.Context) (core.Blocks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return core.Blocks{}, slots.ErrNoSavedData
	}
	return s.blocks, nil
}

// Save replaces the stored blocks and returns a synthetic version reference.
func (s *Store) Save(_ context.Context, b core.Blocks) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = b
	s.saved = true
	s.version++
	return fmt.Sprintf("mem:%d", s.version), nil
}

// readText returns the file content without comment lines, or "" if missing.
func readText(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

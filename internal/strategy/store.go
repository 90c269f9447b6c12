package strategy

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"SmartBid/internal/model"
)

// Store reads strategy definitions from a JSON file. The file is owned by
// external tooling; the controller re-reads it at the start of every cycle
// and never writes it.
type Store struct {
	Path string
}

// NewStore creates a store over a strategies file.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads and validates all strategy records. A missing file yields an
// empty set. Records that fail validation are skipped with a warning, and
// a duplicate (keyword, region) key keeps the first record seen, so one
// bad edit never takes the whole controller down.
func (s *Store) Load() ([]model.Strategy, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read strategies: %w", err)
	}

	var raw []model.Strategy
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse strategies: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	strategies := make([]model.Strategy, 0, len(raw))
	for i := range raw {
		st := raw[i]
		if err := st.Validate(); err != nil {
			log.Printf("[WARN] skipping strategy %q/%q: %v", st.Keyword, st.Region, err)
			continue
		}
		if seen[st.Key()] {
			log.Printf("[WARN] duplicate strategy key %q, keeping first", st.Key())
			continue
		}
		seen[st.Key()] = true
		strategies = append(strategies, st)
	}
	return strategies, nil
}

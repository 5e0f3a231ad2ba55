// Package cache persists per-account statement progress between
// reconciliation sessions as a small human-readable YAML document keyed by
// account name.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Entry holds the statement progress for one reconciled account.
type Entry struct {
	EndingDate      string `yaml:"ending_date,omitempty"`
	EndingBalance   string `yaml:"ending_balance,omitempty"`
	PreviousDate    string `yaml:"previous_date,omitempty"`
	PreviousBalance string `yaml:"previous_balance,omitempty"`
	Shares          bool   `yaml:"shares,omitempty"`
}

// Store is a keyed statement-progress document backed by a YAML file. IO
// problems never abort a session: Load degrades to an empty store and Save
// reports the error for the caller to warn about.
type Store struct {
	path    string
	entries map[string]*Entry
}

// DefaultPath returns the cache location under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ledgerhand.yaml"
	}
	return filepath.Join(home, ".ledgerhand.yaml")
}

// Load reads the store at path. A missing or malformed file yields an
// empty store; err is non-nil only so the caller can emit a warning.
func Load(path string) (*Store, error) {
	s := &Store{path: path, entries: map[string]*Entry{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read statement cache: %w", err)
	}

	if err := yaml.Unmarshal(raw, &s.entries); err != nil {
		s.entries = map[string]*Entry{}
		return s, fmt.Errorf("malformed statement cache %s: %w", path, err)
	}
	if s.entries == nil {
		s.entries = map[string]*Entry{}
	}
	return s, nil
}

// Get returns the entry for an account, or nil when none is recorded.
func (s *Store) Get(account string) *Entry {
	return s.entries[account]
}

// Put records the entry for an account. The change is not durable until
// Save.
func (s *Store) Put(account string, e *Entry) {
	s.entries[account] = e
}

// Save writes the whole document back, sorted by key (yaml.v3 emits map
// keys in sorted order) and pretty-printed for human inspection.
func (s *Store) Save() error {
	raw, err := yaml.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode statement cache: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write statement cache: %w", err)
	}
	return nil
}

// Package settings owns the persisted configuration document: a provider and
// model registry with referential-integrity rules, term-extraction and
// translation option groups, and a one-shot structural migration from the
// older flat schema. A Store is explicitly constructed and injected wherever
// configuration is read; it guards the aggregate with a single mutex and
// rewrites the whole document after every mutating call.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store manages the settings aggregate persisted to a JSON file. All methods
// are safe for concurrent use; every mutating call performs a full
// read-modify-write-through under one lock.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	filePath string
}

// Open creates a Store backed by the given file and loads it immediately.
// A missing or unreadable document falls back to the built-in defaults; a
// legacy flat document is migrated and persisted at once so the legacy shape
// is never observed twice. Load never fails because of document content —
// only path resolution can error.
func Open(filePath string) (*Store, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("settings: resolve path: %w", err)
	}

	s := &Store{filePath: abs}
	s.load()
	return s, nil
}

// Path returns the absolute path of the backing file.
func (s *Store) Path() string { return s.filePath }

// DefaultPath returns the conventional settings location,
// <user config dir>/traduco/settings.json, falling back to a relative path
// when the user config dir cannot be determined.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".traduco", "settings.json")
	}
	return filepath.Join(base, "traduco", "settings.json")
}

// load reads the document, migrating the legacy shape when present. Corrupt
// or missing files fall back to defaults.
func (s *Store) load() {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("settings: unreadable file, using defaults", "path", s.filePath, "err", err)
		}
		s.settings = Default()
		return
	}

	if isLegacyDocument(raw) {
		var old legacySettings
		if err := json.Unmarshal(raw, &old); err != nil {
			slog.Warn("settings: corrupt legacy document, using defaults", "path", s.filePath, "err", err)
			s.settings = Default()
			return
		}

		s.settings = migrate(old)
		// Persist immediately so the next load sees the current schema.
		if err := s.persist(s.settings); err != nil {
			slog.Warn("settings: could not persist migrated document", "path", s.filePath, "err", err)
		}
		slog.Info("settings: migrated legacy document", "path", s.filePath)
		return
	}

	var cur Settings
	if err := json.Unmarshal(raw, &cur); err != nil {
		slog.Warn("settings: corrupt document, using defaults", "path", s.filePath, "err", err)
		s.settings = Default()
		return
	}
	s.settings = cur
}

// Snapshot returns a deep copy of the current aggregate. Readers work on the
// copy so no lock is held while it is used.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings)
}

// SelectedModel returns a copy of the selected model and its effective base
// URL, or false when nothing is selected or the id dangles.
func (s *Store) SelectedModel() (ModelConfig, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.settings.SelectedModel()
	if !ok {
		return ModelConfig{}, "", false
	}
	return *m, s.settings.EffectiveBaseURL(m), true
}

// AddProvider appends a provider and persists.
func (s *Store) AddProvider(p Provider) error {
	return s.mutate(func(st *Settings) error { return st.AddProvider(p) })
}

// UpdateProvider edits a provider's non-identity fields and persists.
func (s *Store) UpdateProvider(id, name, defaultBaseURL, icon string) error {
	return s.mutate(func(st *Settings) error { return st.UpdateProvider(id, name, defaultBaseURL, icon) })
}

// RemoveProvider deletes a provider with all its models and persists.
func (s *Store) RemoveProvider(id string) error {
	return s.mutate(func(st *Settings) error { return st.RemoveProvider(id) })
}

// AddModel appends a model to a provider and persists.
func (s *Store) AddModel(providerID string, m ModelConfig) error {
	return s.mutate(func(st *Settings) error { return st.AddModel(providerID, m) })
}

// UpdateModel edits a model's mutable fields and persists.
func (s *Store) UpdateModel(id string, upd ModelConfig) error {
	return s.mutate(func(st *Settings) error { return st.UpdateModel(id, upd) })
}

// RemoveModel deletes a model and persists.
func (s *Store) RemoveModel(id string) error {
	return s.mutate(func(st *Settings) error { return st.RemoveModel(id) })
}

// SelectModel sets the active model and persists.
func (s *Store) SelectModel(modelID string) error {
	return s.mutate(func(st *Settings) error { return st.Select(modelID) })
}

// SetTermExtraction replaces the term-extraction block and persists.
func (s *Store) SetTermExtraction(te TermExtractionSettings) error {
	return s.mutate(func(st *Settings) error { st.TermExtraction = te; return nil })
}

// SetTranslation replaces the translation options and persists.
func (s *Store) SetTranslation(tr TranslationSettings) error {
	return s.mutate(func(st *Settings) error { st.Translation = tr; return nil })
}

// SetPDF replaces the document-output options and persists.
func (s *Store) SetPDF(p PDFSettings) error {
	return s.mutate(func(st *Settings) error { st.PDF = p; return nil })
}

// SetRPC replaces the RPC addresses and persists.
func (s *Store) SetRPC(r RPCSettings) error {
	return s.mutate(func(st *Settings) error { st.RPC = r; return nil })
}

// SetPaths replaces the path options and persists.
func (s *Store) SetPaths(p PathSettings) error {
	return s.mutate(func(st *Settings) error { st.Paths = p; return nil })
}

// mutate runs fn on the aggregate under the write lock and persists the
// result. When fn errors the aggregate is left untouched and nothing is
// written.
func (s *Store) mutate(fn func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := cloneSettings(s.settings)
	if err := fn(&work); err != nil {
		return err
	}

	if err := s.persist(work); err != nil {
		return err
	}

	s.settings = work
	return nil
}

// persist serializes the whole aggregate and overwrites the backing file.
func (s *Store) persist(st Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o750); err != nil {
		return fmt.Errorf("settings: create config dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("settings: write file: %w", err)
	}
	return nil
}

// cloneSettings deep-copies the aggregate so snapshots and working copies
// never alias the provider or model slices.
func cloneSettings(st Settings) Settings {
	out := st
	out.Providers = make([]Provider, len(st.Providers))
	for i, p := range st.Providers {
		cp := p
		cp.Models = append([]ModelConfig(nil), p.Models...)
		out.Providers[i] = cp
	}
	return out
}

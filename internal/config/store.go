// Package config implements the Config Store (spec.md §4.5): loading,
// installing, and persisting the single Configuration document that
// drives zone wiring, sensors, and the messaging broker connection.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/openfarm-labs/garden-firmware/internal/model"
)

// Blob models the on-device filesystem as read/write of a single named
// blob (spec.md §1 "the filesystem (modeled as read/write of a single
// named blob)"). FileBlob and MemoryBlob are the two implementations this
// module ships; a real board would supply its own (SPIFFS, LittleFS, ...).
type Blob interface {
	Read() ([]byte, error)
	Write([]byte) error
}

// FileBlob persists the configuration document at a fixed path on a
// mounted filesystem, per spec.md §6 ("single file /garden_config.json").
type FileBlob struct {
	Path string
}

func (f FileBlob) Read() ([]byte, error) {
	return os.ReadFile(f.Path)
}

func (f FileBlob) Write(data []byte) error {
	return os.WriteFile(f.Path, data, 0o644)
}

// MemoryBlob is an in-memory Blob for tests and for boards where the
// filesystem mount step is out of scope for this module.
type MemoryBlob struct {
	data []byte
}

func (m *MemoryBlob) Read() ([]byte, error) {
	if m.data == nil {
		return nil, os.ErrNotExist
	}
	return m.data, nil
}

func (m *MemoryBlob) Write(data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

// Store owns the currently-installed Configuration snapshot. Updates
// replace the snapshot wholesale (spec.md §9 "Global mutable
// configuration": an immutable snapshot installed at boot, never
// hot-swapped in place) so readers never observe a partially-updated
// document.
type Store struct {
	blob    Blob
	current atomic.Pointer[model.Configuration]
}

// New wires a Store to the given blob without loading anything yet.
func New(blob Blob) *Store {
	return &Store{blob: blob}
}

// Load mounts the blob and installs its contents, or the compiled-in
// defaults if the blob is absent, unreadable, or fails to parse
// (spec.md §7 "FilesystemMissing / ConfigParseFailure").
func (s *Store) Load() model.Configuration {
	raw, err := s.blob.Read()
	if err != nil {
		log.Printf("config: blob unavailable (%v), using compiled-in defaults", err)
		cfg := model.Default()
		s.current.Store(&cfg)
		return cfg
	}

	var cfg model.Configuration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Printf("config: parse failed (%v), using compiled-in defaults", err)
		def := model.Default()
		s.current.Store(&def)
		return def
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("config: invalid document (%v), using compiled-in defaults", err)
		def := model.Default()
		s.current.Store(&def)
		return def
	}

	s.current.Store(&cfg)
	return cfg
}

// Current returns the installed snapshot. Safe for concurrent use.
func (s *Store) Current() model.Configuration {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return model.Default()
}

// Update validates and persists a new document, installing it as the
// current snapshot. It does not hot-swap live components — the caller
// (the dispatcher's update_config handler) is responsible for requesting a
// reboot afterward, per spec.md §4.2 and §4.5.
func (s *Store) Update(cfg model.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: refusing invalid update: %w", err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := s.blob.Write(raw); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	s.current.Store(&cfg)
	return nil
}

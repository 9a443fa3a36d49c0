package billno

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State is the terminal's durable bill-number record.
type State struct {
	BillNo       int64     `json:"billNo"`
	LocationCode string    `json:"locationCode,omitempty"`
	CounterCode  string    `json:"counterCode,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StateStore persists State across terminal restarts.
// Load returns a zero State when nothing was saved yet.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// FileState stores State as a JSON file, replaced atomically on every save.
type FileState struct {
	path string
}

// NewFileState returns a FileState at path. The parent directory is created on
// first save.
func NewFileState(path string) *FileState {
	return &FileState{path: path}
}

// Load reads the state file.
func (f *FileState) Load() (State, error) {
	var st State
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to open state file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&st); err != nil {
		return State{}, fmt.Errorf("failed to decode state file: %w", err)
	}
	return st, nil
}

// Save writes st to a temporary file and renames it over the state file.
func (f *FileState) Save(st State) error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// MemoryState keeps State in memory.
type MemoryState struct {
	mu sync.Mutex
	st State
}

func (m *MemoryState) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *MemoryState) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

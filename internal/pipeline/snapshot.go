package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const snapshotFileName = "pipeline.json"

// SnapshotStore abstracts persistence for pipeline state between invocations.
type SnapshotStore interface {
	Load() (snapshot, error)
	Save(snapshot) error
	Clear() error
}

type snapshot struct {
	Document Document               `json:"document"`
	Stages   map[string]StageStatus `json:"stages"`
	Version  uint64                 `json:"version"`
}

// FileSnapshotStore writes pipeline state to a JSON file on disk.
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore builds a FileSnapshotStore rooted at stateDir.
func NewFileSnapshotStore(stateDir string) *FileSnapshotStore {
	return &FileSnapshotStore{path: filepath.Join(stateDir, snapshotFileName)}
}

// Load reads pipeline state from disk. A missing file resolves to an empty
// snapshot. Stages recorded as running belong to a process that no longer
// exists, so they reload as idle.
func (s *FileSnapshotStore) Load() (snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snapshot{Stages: newStageSet()}, nil
		}
		return snapshot{}, fmt.Errorf("read pipeline state: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot{}, fmt.Errorf("decode pipeline state: %w", err)
	}
	if snap.Stages == nil {
		snap.Stages = newStageSet()
	}
	for key, status := range snap.Stages {
		if status.State == StageRunning {
			snap.Stages[key] = StageStatus{State: StageIdle}
		}
	}
	return snap, nil
}

// Save persists pipeline state to disk.
func (s *FileSnapshotStore) Save(snap snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure pipeline state directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pipeline state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write pipeline state: %w", err)
	}
	return nil
}

// Clear removes the persisted state entirely.
func (s *FileSnapshotStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear pipeline state: %w", err)
	}
	return nil
}

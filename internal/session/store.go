package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const credentialFileName = "session.json"

// CredentialStore abstracts persistence for session state.
type CredentialStore interface {
	Load() (credentialState, error)
	Save(credentialState) error
	Clear() error
}

type credentialState struct {
	Credential       string `json:"credential"`
	ClientIdentifier string `json:"client_identifier"`
}

// FileCredentialStore writes session state to a JSON file on disk. A file
// lock guards against concurrent invocations clobbering each other.
type FileCredentialStore struct {
	path string
	lock *flock.Flock
}

// NewFileCredentialStore builds a FileCredentialStore rooted at stateDir.
func NewFileCredentialStore(stateDir string) *FileCredentialStore {
	path := filepath.Join(stateDir, credentialFileName)
	return &FileCredentialStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads session state from disk. A missing file resolves to an empty
// state with a fresh client identifier.
func (s *FileCredentialStore) Load() (credentialState, error) {
	if err := s.acquire(); err != nil {
		return credentialState{}, err
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return credentialState{ClientIdentifier: newClientIdentifier()}, nil
		}
		return credentialState{}, fmt.Errorf("read session state: %w", err)
	}

	var state credentialState
	if err := json.Unmarshal(data, &state); err != nil {
		return credentialState{}, fmt.Errorf("decode session state: %w", err)
	}
	if state.ClientIdentifier == "" {
		state.ClientIdentifier = newClientIdentifier()
	}
	return state, nil
}

// Save persists session state to disk with restricted permissions.
func (s *FileCredentialStore) Save(state credentialState) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure session state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

// Clear removes the credential while keeping the client identifier stable.
func (s *FileCredentialStore) Clear() error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	state.Credential = ""
	return s.Save(state)
}

func (s *FileCredentialStore) acquire() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock session state: %w", err)
	}
	return nil
}

func newClientIdentifier() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes an export payload into dir under the given label and returns
// the full path.
func Save(dir, label string, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", errors.New("export payload is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure export directory: %w", err)
	}
	path := filepath.Join(dir, label)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

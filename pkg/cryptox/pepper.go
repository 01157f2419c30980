package cryptox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGeneratePepper loads the pepper from path, or generates and persists
// a new one when the file does not exist yet. Losing the file invalidates
// every argon2id hash, so it lives next to the database.
func LoadOrGeneratePepper(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("cryptox: pepper path is empty")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("cryptox: create pepper dir: %w", err)
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		pepper := strings.TrimSpace(string(b))
		if pepper == "" {
			return "", fmt.Errorf("cryptox: pepper file %s is empty", path)
		}
		return pepper, nil
	case !os.IsNotExist(err):
		return "", fmt.Errorf("cryptox: read pepper: %w", err)
	}

	pepper, err := GenerateToken(keyLength)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return "", fmt.Errorf("cryptox: write pepper: %w", err)
	}
	return pepper, nil
}

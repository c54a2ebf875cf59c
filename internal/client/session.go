package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SessionFile keeps the client's session id between runs
type SessionFile struct {
	path string
}

// NewSessionFile uses the file at path
func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

// DefaultSessionPath is ~/.tradechat/session, or TRADECHAT_HOME/session when set
func DefaultSessionPath() (string, error) {
	base := os.Getenv("TRADECHAT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".tradechat")
	}
	return filepath.Join(base, "session"), nil
}

// Load returns the stored session id, creating and storing a new one on
// first use
func (f *SessionFile) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return f.Reset()
}

// Reset stores and returns a fresh session id
func (f *SessionFile) Reset() (string, error) {
	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write session file: %w", err)
	}
	return id, nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nexusai/internal/providers"
)

// FileStore persists the provider→API-key map as a JSON object on
// disk. With a cipher attached the whole document is encrypted at
// rest. Loading a path that does not exist yet returns an empty map so
// first startup needs no seed file.
type FileStore struct {
	path   string
	cipher *Encryption
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// WithCipher encrypts the file contents at rest.
func (s *FileStore) WithCipher(cipher *Encryption) *FileStore {
	s.cipher = cipher
	return s
}

// Save writes the credential map, creating parent directories as
// needed. The file is readable by the owner only.
func (s *FileStore) Save(ctx context.Context, credentials map[providers.ProviderID]string) error {
	data, err := json.MarshalIndent(credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if s.cipher != nil {
		sealed, err := s.cipher.Encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt credentials: %w", err)
		}
		data = []byte(sealed)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// Load reads the credential map back. A missing file is not an error.
func (s *FileStore) Load(ctx context.Context) (map[providers.ProviderID]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[providers.ProviderID]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if s.cipher != nil {
		plain, err := s.cipher.Decrypt(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
		}
		data = plain
	}

	credentials := make(map[providers.ProviderID]string)
	if err := json.Unmarshal(data, &credentials); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return credentials, nil
}

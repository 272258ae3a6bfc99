// Package credential keeps the medibook access token in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "medibook"
	tokenKey    = "access-token"
)

var ErrNoToken = errors.New("not logged in")

type Store struct {
	ring keyring.Keyring
}

// Open returns a store backed by the platform keyring, falling back to an
// encrypted file under fileDir.
func Open(fileDir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("medibook-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Token returns the stored access token or ErrNoToken.
func (s *Store) Token() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", tokenKey, err)
	}
	if len(item.Data) == 0 {
		return "", ErrNoToken
	}
	return string(item.Data), nil
}

func (s *Store) SetToken(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:   tokenKey,
		Data:  []byte(token),
		Label: "medibook access token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", tokenKey, err)
	}
	return nil
}

// DeleteToken is a no-op when nothing is stored.
func (s *Store) DeleteToken() error {
	err := s.ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", tokenKey, err)
	}
	return nil
}

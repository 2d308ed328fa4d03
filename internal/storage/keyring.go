package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const keyringServiceName = "ustamapp"

var _ Store = (*KeyringStore)(nil)

// KeyringStore keeps device storage in the OS keychain, falling back to an
// encrypted file under dir.
type KeyringStore struct {
	ring keyring.Keyring
}

func OpenKeyringStore(dir string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("ustamapp-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStore(ring)
}

func NewKeyringStore(ring keyring.Keyring) (*KeyringStore, error) {
	if ring == nil {
		return nil, fmt.Errorf("keyring is required")
	}
	return &KeyringStore{ring: ring}, nil
}

func (k *KeyringStore) Get(_ context.Context, key string) ([]byte, error) {
	item, err := k.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %q from keyring: %w", key, err)
	}
	return item.Data, nil
}

func (k *KeyringStore) Set(_ context.Context, key string, value []byte) error {
	err := k.ring.Set(keyring.Item{
		Key:   key,
		Data:  value,
		Label: "UstamApp " + key,
	})
	if err != nil {
		return fmt.Errorf("setting %q in keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Remove(_ context.Context, key string) error {
	err := k.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing %q from keyring: %w", key, err)
	}
	return nil
}

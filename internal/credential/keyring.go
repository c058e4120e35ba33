// Package credential keeps storage secrets in the system keyring instead of
// the config file.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "todomaster"

// RedisPasswordKey names the keyring entry holding the Redis backend password.
const RedisPasswordKey = "redis-password"

// ErrNotFound is returned by Get when the keyring has no entry for the key.
var ErrNotFound = errors.New("credential not found")

// open is replaced in tests with an in-memory keyring.
var open = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/todomaster/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("todomaster-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("credential name must not be empty")
	}
	return nil
}

// Get returns the value stored under key. A missing entry wraps ErrNotFound.
func Get(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	ring, err := open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores value under key, replacing any previous value.
func Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	ring, err := open()
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       serviceName + " " + key,
		Description: "todomaster storage credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing a missing entry wraps ErrNotFound.
func Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	ring, err := open()
	if err != nil {
		return err
	}
	switch err := ring.Remove(key); {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return fmt.Errorf("deleting credential %q: %w", key, ErrNotFound)
	case err != nil:
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

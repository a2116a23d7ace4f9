//go:build darwin

package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// darwinClient talks to the macOS Keychain.
type darwinClient struct{}

func newPlatformClient() Client {
	return &darwinClient{}
}

func (c *darwinClient) Get(service, key string) (string, error) {
	value, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (c *darwinClient) Set(service, key, value string) error {
	return keyring.Set(service, key, value)
}

func (c *darwinClient) Delete(service, key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (c *darwinClient) Available() bool {
	return true
}

var _ Client = (*darwinClient)(nil)

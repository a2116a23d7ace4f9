// Package keychain wraps the OS secret store behind a capability-checked
// strategy: a real client on macOS and an always-unavailable client
// everywhere else, selected once at construction.
package keychain

import (
	"errors"
	"runtime"
	"strings"

	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
)

// DefaultService is the secret-store service name grouping every entry
// written by this module.
const DefaultService = "cloudconduit"

// ErrUnsupported indicates the host platform has no keychain capability.
var ErrUnsupported = errors.New("keychain is not supported on this platform")

// ErrNotFound indicates the requested entry does not exist.
var ErrNotFound = errors.New("keychain entry not found")

// Client is the platform-specific keychain primitive. Implementations are
// selected by build tags via newPlatformClient.
type Client interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
	Available() bool
}

// Store provides credential get/set/delete under a fixed service name.
// Keys are lower-cased before use, matching the environment-variable-style
// names the resolution engine passes in.
type Store struct {
	service string
	client  Client
}

// NewStore creates a Store over the platform keychain. An empty service
// uses DefaultService.
func NewStore(service string) *Store {
	return NewStoreWithClient(service, newPlatformClient())
}

// NewStoreWithClient creates a Store with an explicit client, primarily
// for tests.
func NewStoreWithClient(service string, client Client) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service, client: client}
}

// Service returns the fixed service name entries are grouped under.
func (s *Store) Service() string {
	return s.service
}

// Available reports whether the platform keychain can be used at all.
func (s *Store) Available() bool {
	return s.client.Available()
}

// Get looks up a credential. Any failure (missing entry, locked keychain,
// unsupported platform) reads as absent; read paths never propagate
// keychain errors.
func (s *Store) Get(key string) (string, bool) {
	if !s.client.Available() {
		return "", false
	}

	value, err := s.client.Get(s.service, strings.ToLower(key))
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// Set stores a credential. Unlike Get, this is an operator action: it
// fails explicitly with a CapabilityError when the platform has no
// keychain.
func (s *Store) Set(key, value string) error {
	if !s.client.Available() {
		return ccerrors.CapabilityError{
			Capability: "keychain storage",
			Platform:   runtime.GOOS,
			Err:        ErrUnsupported,
		}
	}
	return s.client.Set(s.service, strings.ToLower(key), value)
}

// Delete removes a credential, with the same capability contract as Set.
func (s *Store) Delete(key string) error {
	if !s.client.Available() {
		return ccerrors.CapabilityError{
			Capability: "keychain deletion",
			Platform:   runtime.GOOS,
			Err:        ErrUnsupported,
		}
	}
	return s.client.Delete(s.service, strings.ToLower(key))
}

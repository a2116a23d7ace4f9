package keychain

import (
	"fmt"
	"sync"
)

// FakeClient is an in-memory Client used by tests across packages.
type FakeClient struct {
	mu          sync.Mutex
	entries     map[string]string
	Unavailable bool
	GetErr      error
}

// NewFakeClient returns an empty, available fake keychain.
func NewFakeClient() *FakeClient {
	return &FakeClient{entries: make(map[string]string)}
}

func (f *FakeClient) compose(service, key string) string {
	return service + "/" + key
}

// ensure makes the zero value usable; callers lock first.
func (f *FakeClient) ensure() {
	if f.entries == nil {
		f.entries = make(map[string]string)
	}
}

func (f *FakeClient) Get(service, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return "", f.GetErr
	}
	value, ok := f.entries[f.compose(service, key)]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *FakeClient) Set(service, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.entries[f.compose(service, key)] = value
	return nil
}

func (f *FakeClient) Delete(service, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	composed := f.compose(service, key)
	if _, ok := f.entries[composed]; !ok {
		return ErrNotFound
	}
	delete(f.entries, composed)
	return nil
}

func (f *FakeClient) Available() bool {
	return !f.Unavailable
}

// Dump returns a copy of the stored entries for assertions.
func (f *FakeClient) Dump() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.entries))
	for k, v := range f.entries {
		out[k] = v
	}
	return out
}

// Seed stores an entry directly, bypassing availability checks.
func (f *FakeClient) Seed(service, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.entries[fmt.Sprintf("%s/%s", service, key)] = value
}

var _ Client = (*FakeClient)(nil)

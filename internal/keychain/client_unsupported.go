//go:build !darwin

package keychain

// unsupportedClient is the strategy for platforms without a keychain.
type unsupportedClient struct{}

func newPlatformClient() Client {
	return &unsupportedClient{}
}

func (c *unsupportedClient) Get(service, key string) (string, error) {
	return "", ErrUnsupported
}

func (c *unsupportedClient) Set(service, key, value string) error {
	return ErrUnsupported
}

func (c *unsupportedClient) Delete(service, key string) error {
	return ErrUnsupported
}

func (c *unsupportedClient) Available() bool {
	return false
}

var _ Client = (*unsupportedClient)(nil)

// Package commands implements the cloudconduit CLI command tree.
package commands

import (
	"sort"

	"github.com/wwd1015/cloudconduit/internal/config"
	"github.com/wwd1015/cloudconduit/internal/keychain"
	"github.com/wwd1015/cloudconduit/internal/logging"
)

// Config carries the state shared by all commands. The root command
// fills it from the persistent flags before any RunE fires.
type Config struct {
	// Path of the defaults document; empty means the discovered location.
	Path string

	Logger *logging.Logger

	// Store overrides the platform keychain, used by tests.
	Store *keychain.Store
}

// Resolver builds a resolution engine from the command state.
func (c *Config) Resolver() *config.Resolver {
	return config.NewResolverWith(c.Logger, c.Path, c.Store)
}

// credentialKeys marks defaults-document keys whose values are masked in
// display output. Credentials should live in the keychain, but a user
// who put one in the file should not have it echoed back.
var credentialKeys = map[string]bool{
	"password":               true,
	"private_key_passphrase": true,
	"access_token":           true,
	"aws_access_key_id":      true,
	"aws_secret_access_key":  true,
	"aws_session_token":      true,
}

// sortedKeys returns map keys in stable order for display.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

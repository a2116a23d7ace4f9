// Package config implements the layered configuration resolution engine:
// call-site overrides, process environment, OS keychain (credentials
// only), and the defaults document, consulted in that order.
package config

import (
	"os"
	"sync"

	"github.com/wwd1015/cloudconduit/internal/keychain"
	"github.com/wwd1015/cloudconduit/internal/logging"
	"github.com/wwd1015/cloudconduit/internal/sysinfo"
)

// defaultS3Region is the canonical form of the region fallback the
// original credential-only resolver hard-coded. It applies only after all
// four tiers miss region_name; see DESIGN.md.
const defaultS3Region = "us-east-1"

// Resolver resolves configuration values for one backend service at a
// time. Each instance memoizes the defaults document on first use and
// never shares that cache with another instance.
type Resolver struct {
	store        *keychain.Store
	logger       *logging.Logger
	defaultsPath string

	loadOnce sync.Once
	defaults Defaults
}

// NewResolver creates a resolver over the platform keychain and the
// default config location.
func NewResolver(logger *logging.Logger) *Resolver {
	return NewResolverWith(logger, "", keychain.NewStore(""))
}

// NewResolverWith creates a resolver with an explicit defaults path and
// keychain store. An empty path means DefaultPath().
func NewResolverWith(logger *logging.Logger, defaultsPath string, store *keychain.Store) *Resolver {
	if logger == nil {
		logger = logging.New(false, false)
	}
	if store == nil {
		store = keychain.NewStore("")
	}
	return &Resolver{store: store, logger: logger, defaultsPath: defaultsPath}
}

// Defaults returns the memoized defaults document, loading it on first
// access.
func (r *Resolver) Defaults() Defaults {
	r.loadOnce.Do(func() {
		r.defaults = LoadDefaults(r.defaultsPath, r.logger)
	})
	return r.defaults
}

// Keychain exposes the underlying store for operator commands.
func (r *Resolver) Keychain() *keychain.Store {
	return r.store
}

// Value resolves one (service, key) pair. The tiers are consulted in a
// fixed total order and the first match wins:
//
//  1. overrides: presence of the key decides, even for an empty value
//  2. environment variable: must be non-empty
//  3. keychain, only when credential is true: must be non-empty
//  4. defaults document: must be non-empty
//
// The boolean result distinguishes absent from empty; absent keys are
// omitted from aggregated mappings.
func (r *Resolver) Value(service, key string, overrides map[string]string, credential bool) (string, bool) {
	if overrides != nil {
		if value, ok := overrides[key]; ok {
			return value, true
		}
	}

	envKey := EnvKey(service, key)
	if value := os.Getenv(envKey); value != "" {
		return value, true
	}

	if credential {
		if value, ok := r.store.Get(envKey); ok {
			return value, true
		}
	}

	return r.Defaults().Get(service, key)
}

// param describes one aggregated parameter of a backend mapping.
type param struct {
	key        string
	credential bool
}

// resolveAll builds a mapping for one service, omitting absent entries.
func (r *Resolver) resolveAll(service string, params []param, overrides map[string]string) map[string]string {
	result := make(map[string]string, len(params))
	for _, p := range params {
		if value, ok := r.Value(service, p.key, overrides, p.credential); ok {
			result[p.key] = value
		}
	}
	return result
}

// SnowflakeConfig builds the complete Snowflake parameter mapping. The
// user is assigned directly (the given username, or the current system
// user) and is never tier-resolved.
func (r *Resolver) SnowflakeConfig(username string, overrides map[string]string) map[string]string {
	if username == "" {
		username = sysinfo.CurrentUser()
	}

	result := r.resolveAll(ServiceSnowflake, []param{
		{key: "account"},
		{key: "warehouse"},
		{key: "database"},
		{key: "schema"},
		{key: "password", credential: true},
		{key: "private_key_path"},
		{key: "private_key_passphrase", credential: true},
		{key: "authenticator"},
	}, overrides)

	result["user"] = username
	return result
}

// DatabricksConfig builds the complete Databricks parameter mapping.
func (r *Resolver) DatabricksConfig(overrides map[string]string) map[string]string {
	return r.resolveAll(ServiceDatabricks, []param{
		{key: "server_hostname"},
		{key: "http_path"},
		{key: "access_token", credential: true},
		{key: "catalog"},
		{key: "schema"},
	}, overrides)
}

// S3Config builds the complete S3 parameter mapping. region_name falls
// back to us-east-1 when no tier provides it.
func (r *Resolver) S3Config(overrides map[string]string) map[string]string {
	result := r.resolveAll(ServiceS3, []param{
		{key: "aws_access_key_id", credential: true},
		{key: "aws_secret_access_key", credential: true},
		{key: "aws_session_token", credential: true},
		{key: "region_name"},
	}, overrides)

	if _, ok := result["region_name"]; !ok {
		result["region_name"] = defaultS3Region
	}
	return result
}

// SetCredential stores a credential in the keychain under the lower-cased
// key. Fails explicitly on platforms without keychain support.
func (r *Resolver) SetCredential(key, value string) error {
	return r.store.Set(key, value)
}

// DeleteCredential removes a credential from the keychain.
func (r *Resolver) DeleteCredential(key string) error {
	return r.store.Delete(key)
}

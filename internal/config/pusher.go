package config

import (
	"os"

	"github.com/wwd1015/cloudconduit/internal/logging"
)

// pushable lists the non-credential parameters the pusher exports per
// service. Credentials never travel through the process environment this
// way; they stay in the keychain or the caller's hands.
var pushable = map[string][]string{
	ServiceSnowflake:  {"account", "warehouse", "database", "schema"},
	ServiceDatabricks: {"server_hostname", "http_path", "catalog", "schema"},
	ServiceS3:         {"region_name"},
}

// PushToEnv exports defaults-document values into the process environment
// and returns what was set. Without override, only variables that are not
// already present are filled, so repeated pushes are idempotent. A missing
// or malformed document pushes nothing (the loader's resilience applies).
func PushToEnv(path string, override bool, logger *logging.Logger) map[string]string {
	defaults := LoadDefaults(path, logger)
	set := make(map[string]string)

	for service, keys := range pushable {
		for _, key := range keys {
			value, ok := defaults.Get(service, key)
			if !ok {
				continue
			}

			envKey := EnvKey(service, key)
			if _, exists := os.LookupEnv(envKey); exists && !override {
				continue
			}

			if err := os.Setenv(envKey, value); err != nil {
				if logger != nil {
					logger.Warn("failed to set %s: %v", envKey, err)
				}
				continue
			}
			set[envKey] = value
		}
	}

	return set
}

package connectors

import (
	"os"
	"testing"

	"github.com/wwd1015/cloudconduit/internal/config"
)

// clearBackendEnv blanks every mapped backend variable so resolution in
// these tests sees only overrides and the (empty) keychain and defaults.
func clearBackendEnv(t *testing.T) {
	t.Helper()
	for _, vars := range config.EnvMappings() {
		for _, envVar := range vars {
			t.Setenv(envVar, "")
			os.Unsetenv(envVar)
		}
	}
}

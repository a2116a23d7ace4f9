package connectors

import (
	"github.com/wwd1015/cloudconduit/internal/config"
	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
)

// requireParams validates that every required parameter is present in a
// resolved mapping, reporting all missing ones in a single error with
// their environment variable names.
func requireParams(backend, service string, cfg map[string]string, required ...string) error {
	var missing, envVars []string
	for _, key := range required {
		if cfg[key] == "" {
			missing = append(missing, key)
			envVars = append(envVars, config.EnvKey(service, key))
		}
	}

	if len(missing) > 0 {
		return ccerrors.MissingParamsError{Backend: backend, Params: missing, EnvVars: envVars}
	}
	return nil
}

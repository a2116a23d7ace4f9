package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wwd1015/cloudconduit/internal/logging"
)

// EnvConfigPath overrides the defaults document location when set.
const EnvConfigPath = "CLOUDCONDUIT_CONFIG"

// Defaults is the loaded defaults document: a two-level mapping of service
// identifier → parameter name → value. Values holds scalars stringified
// for resolution; Raw keeps the document as parsed for display and export.
type Defaults struct {
	Values map[string]map[string]string
	Raw    map[string]interface{}
}

// Empty reports whether the document contributed nothing.
func (d Defaults) Empty() bool {
	return len(d.Values) == 0
}

// Get returns the default for a (service, parameter) pair.
func (d Defaults) Get(service, key string) (string, bool) {
	params, ok := d.Values[service]
	if !ok {
		return "", false
	}
	value, ok := params[key]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// DefaultPath returns the defaults document location: $CLOUDCONDUIT_CONFIG
// when set, otherwise ~/.cloudconduit/config.yaml.
func DefaultPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cloudconduit", "config.yaml")
	}
	return filepath.Join(home, ".cloudconduit", "config.yaml")
}

// LoadDefaults reads the defaults document. It never fails: a missing file
// or an empty document yields an empty result, and a malformed document
// yields an empty result after exactly one warning. Callers that only need
// overrides or environment values must not be blocked by a broken file.
func LoadDefaults(path string, logger *logging.Logger) Defaults {
	if path == "" {
		path = DefaultPath()
	}

	empty := Defaults{Values: map[string]map[string]string{}, Raw: map[string]interface{}{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warn("failed to read config from %s: %v", path, err)
		}
		return empty
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if logger != nil {
			logger.Warn("failed to load config from %s: %v", path, err)
		}
		return empty
	}
	if doc == nil {
		return empty
	}

	values := make(map[string]map[string]string, len(doc))
	for service, sub := range doc {
		params, ok := sub.(map[string]interface{})
		if !ok {
			continue
		}
		inner := make(map[string]string, len(params))
		for key, value := range params {
			if s, ok := scalarString(value); ok {
				inner[key] = s
			}
		}
		values[service] = inner
	}

	return Defaults{Values: values, Raw: doc}
}

// scalarString stringifies YAML scalars. Nested structures are not usable
// by the resolution engine and stay only in the raw view.
func scalarString(v interface{}) (string, bool) {
	switch v.(type) {
	case string, int, int64, uint64, float64, bool:
		return fmt.Sprintf("%v", v), true
	default:
		return "", false
	}
}

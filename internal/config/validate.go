package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
)

// defaultsSchema constrains the defaults document to two levels of maps
// with scalar leaves. Nested sub-structures are tolerated by the loader
// but flagged here so operators see them before they silently resolve to
// nothing.
const defaultsSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {
      "type": ["string", "number", "integer", "boolean"]
    }
  }
}`

// ValidateDefaults checks the defaults document against the expected
// service → parameter → scalar shape. Unlike the loader, this is an
// operator action and reports problems instead of swallowing them; every
// violation is included in one error.
func ValidateDefaults(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ccerrors.UserError{
			Message:    fmt.Sprintf("cannot read config file %s", path),
			Suggestion: "Run 'cloudconduit config init' to create a starter config",
			Err:        err,
		}
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ccerrors.UserError{
			Message: fmt.Sprintf("config file %s is not valid YAML", path),
			Err:     err,
		}
	}
	if doc == nil {
		return nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(defaultsSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return ccerrors.UserError{
			Message: fmt.Sprintf("config file %s has an invalid structure", path),
			Details: strings.Join(violations, "; "),
		}
	}

	return nil
}

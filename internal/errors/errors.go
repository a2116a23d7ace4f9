// Package errors defines the user-facing error types shared by the
// resolution engine, the connectors, and the CLI.
package errors

import (
	"fmt"
	"strings"
)

// UserError is an error meant to be shown to the user with helpful context.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError reports a problem with a configuration value.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CapabilityError reports an operation attempted on a platform that lacks
// the required capability. It is raised only by operator actions (keychain
// set/delete); read paths degrade silently instead.
type CapabilityError struct {
	Capability string
	Platform   string
	Err        error
}

func (e CapabilityError) Error() string {
	msg := fmt.Sprintf("%s is not available on %s", e.Capability, e.Platform)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e CapabilityError) Unwrap() error {
	return e.Err
}

// MissingParamsError is returned by connector construction when required
// parameters could not be resolved from any source. All missing parameters
// are reported at once.
type MissingParamsError struct {
	Backend string
	Params  []string
	EnvVars []string
}

func (e MissingParamsError) Error() string {
	msg := fmt.Sprintf("%s configuration is missing required parameters: %s",
		e.Backend, strings.Join(e.Params, ", "))
	if len(e.EnvVars) > 0 {
		msg += fmt.Sprintf("\n  💡 Set %s, pass overrides, or add defaults to the config file",
			strings.Join(e.EnvVars, ", "))
	}
	return msg
}

// BackendError wraps a vendor SDK failure with the backend name and the
// operation that failed.
func BackendError(backend, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s error during %s", backend, operation),
		Suggestion: backendSuggestion(backend, err),
		Err:        err,
	}
}

// backendSuggestion maps well-known vendor failures to actionable advice.
func backendSuggestion(backend string, err error) string {
	errStr := err.Error()

	switch backend {
	case "snowflake":
		if strings.Contains(errStr, "Incorrect username or password") {
			return "Verify SNOWFLAKE_PASSWORD or store it with 'cloudconduit credentials set snowflake_password'"
		}
		if strings.Contains(errStr, "account") {
			return "Check SNOWFLAKE_ACCOUNT (the identifier without .snowflakecomputing.com)"
		}
	case "databricks":
		if strings.Contains(errStr, "403") || strings.Contains(errStr, "Invalid access token") {
			return "Regenerate the personal access token and update DATABRICKS_ACCESS_TOKEN"
		}
		if strings.Contains(errStr, "no such host") {
			return "Check DATABRICKS_SERVER_HOSTNAME (your-workspace.cloud.databricks.com)"
		}
	case "s3":
		if strings.Contains(errStr, "InvalidAccessKeyId") || strings.Contains(errStr, "SignatureDoesNotMatch") {
			return "Check AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY"
		}
		if strings.Contains(errStr, "ExpiredToken") {
			return "Refresh AWS_SESSION_TOKEN; temporary credentials have expired"
		}
	}

	return ""
}

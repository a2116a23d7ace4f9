// Package sysinfo resolves the identity of the operating user. It backs
// the default Snowflake username and the keychain account naming scheme.
package sysinfo

import (
	"os"
	"os/user"
	"runtime"
	"strings"
)

// UnknownUser is returned when every identity source fails.
const UnknownUser = "unknown_user"

// fallbackEnvVars are scanned in order after the OS account lookup fails.
// The order is fixed; changing it changes resolved identities across
// platforms.
var fallbackEnvVars = []string{"USER", "USERNAME", "LOGNAME"}

// CurrentUser returns the current system username. It never fails: the OS
// account database is tried first, then the login environment variables,
// then the UnknownUser sentinel.
func CurrentUser() string {
	return currentUserFrom(osUsername, os.Getenv)
}

func currentUserFrom(primary func() (string, error), getenv func(string) string) string {
	if name, err := primary(); err == nil && name != "" {
		return name
	}

	for _, env := range fallbackEnvVars {
		if name := getenv(env); name != "" {
			return name
		}
	}

	return UnknownUser
}

func osUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// ComputerName returns the hostname, or "unknown_host" when unavailable.
func ComputerName() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown_host"
	}
	return name
}

// Info returns a snapshot of system identity details for display.
func Info() map[string]string {
	return map[string]string{
		"username":   CurrentUser(),
		"hostname":   ComputerName(),
		"platform":   runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
	}
}

// DefaultUserID derives a service user ID from the current system user:
// any @domain portion of the raw username is dropped, the remainder is
// lower-cased with spaces replaced by dots, and an optional domain suffix
// (normalized to start with @) is appended.
func DefaultUserID(domainSuffix string) string {
	return defaultUserIDFor(CurrentUser(), domainSuffix)
}

func defaultUserIDFor(username, domainSuffix string) string {
	if at := strings.Index(username, "@"); at >= 0 {
		username = username[:at]
	}

	username = strings.ToLower(strings.ReplaceAll(username, " ", "."))

	if domainSuffix != "" {
		if !strings.HasPrefix(domainSuffix, "@") {
			domainSuffix = "@" + domainSuffix
		}
		username += domainSuffix
	}

	return username
}

// DefaultSnowflakeUser returns the default Snowflake username for the
// current system user.
func DefaultSnowflakeUser(domainSuffix string) string {
	return DefaultUserID(domainSuffix)
}

// KeychainAccount formats a per-user keychain account name as
// "service.username". An empty username means the current system user.
// Note that the resolution engine keys credentials on parameter names
// alone; this scheme exists for callers that need a per-user entry.
func KeychainAccount(service, username string) string {
	if username == "" {
		username = CurrentUser()
	}

	username = strings.ToLower(username)
	username = strings.ReplaceAll(username, " ", ".")
	username = strings.ReplaceAll(username, "@", ".")

	return service + "." + username
}

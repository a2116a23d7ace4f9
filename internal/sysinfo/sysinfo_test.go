package sysinfo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentUserFromPrimary(t *testing.T) {
	t.Parallel()

	got := currentUserFrom(
		func() (string, error) { return "alice", nil },
		func(string) string { t.Fatal("env should not be consulted"); return "" },
	)
	assert.Equal(t, "alice", got)
}

func TestCurrentUserFallbackChain(t *testing.T) {
	t.Parallel()

	failing := func() (string, error) { return "", errors.New("no account database") }

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "USER wins first",
			env:  map[string]string{"USER": "bob", "USERNAME": "carol", "LOGNAME": "dave"},
			want: "bob",
		},
		{
			name: "USERNAME when USER empty",
			env:  map[string]string{"USERNAME": "carol", "LOGNAME": "dave"},
			want: "carol",
		},
		{
			name: "LOGNAME last",
			env:  map[string]string{"LOGNAME": "dave"},
			want: "dave",
		},
		{
			name: "sentinel when everything fails",
			env:  map[string]string{},
			want: UnknownUser,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := currentUserFrom(failing, func(key string) string { return tt.env[key] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrentUserEmptyPrimaryFallsThrough(t *testing.T) {
	t.Parallel()

	got := currentUserFrom(
		func() (string, error) { return "", nil },
		func(key string) string {
			if key == "USER" {
				return "erin"
			}
			return ""
		},
	)
	assert.Equal(t, "erin", got)
}

func TestDefaultUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		suffix   string
		want     string
	}{
		{"plain name", "jdoe", "", "jdoe"},
		{"spaces become dots", "John Doe", "", "john.doe"},
		{"existing domain dropped", "jdoe@corp.example.com", "", "jdoe"},
		{"suffix appended", "John Doe", "@company.com", "john.doe@company.com"},
		{"suffix normalized", "jdoe", "company.com", "jdoe@company.com"},
		{"domain dropped then suffix added", "John Doe@old.org", "new.org", "john.doe@new.org"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, defaultUserIDFor(tt.username, tt.suffix))
		})
	}
}

func TestKeychainAccount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "snowflake.custom.user", KeychainAccount("snowflake", "custom.user"))
	assert.Equal(t, "databricks.john.doe", KeychainAccount("databricks", "John Doe"))
	assert.Equal(t, "snowflake.jdoe.corp.com", KeychainAccount("snowflake", "jdoe@corp.com"))

	// Empty username resolves the current user; just check the shape.
	got := KeychainAccount("snowflake", "")
	assert.Contains(t, got, "snowflake.")
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info := Info()
	assert.NotEmpty(t, info["username"])
	assert.NotEmpty(t, info["hostname"])
	assert.NotEmpty(t, info["platform"])
}

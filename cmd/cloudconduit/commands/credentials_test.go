package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwd1015/cloudconduit/internal/keychain"
	"github.com/wwd1015/cloudconduit/internal/logging"
)

func newCredentialsConfig(fake *keychain.FakeClient) *Config {
	return &Config{
		Logger: logging.New(false, true),
		Store:  keychain.NewStoreWithClient(keychain.DefaultService, fake),
	}
}

func runCredentials(t *testing.T, cfg *Config, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCredentialsCommand(cfg)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCredentialsSetCommand_FlagValue(t *testing.T) {
	t.Parallel()

	fake := &keychain.FakeClient{}
	cfg := newCredentialsConfig(fake)

	_, err := runCredentials(t, cfg, "", "set", "SNOWFLAKE_PASSWORD", "--value", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "hunter2", fake.Dump()["cloudconduit/snowflake_password"])
}

func TestCredentialsSetCommand_ReadsStdin(t *testing.T) {
	t.Parallel()

	fake := &keychain.FakeClient{}
	cfg := newCredentialsConfig(fake)

	out, err := runCredentials(t, cfg, "from-stdin\n", "set", "databricks_access_token")
	require.NoError(t, err)
	assert.Contains(t, out, "Value for databricks_access_token")
	assert.Equal(t, "from-stdin", fake.Dump()["cloudconduit/databricks_access_token"])
}

func TestCredentialsSetCommand_RejectsEmpty(t *testing.T) {
	t.Parallel()

	cfg := newCredentialsConfig(&keychain.FakeClient{})

	_, err := runCredentials(t, cfg, "\n", "set", "snowflake_password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty credential")
}

func TestCredentialsGetCommand_RedactsByDefault(t *testing.T) {
	t.Parallel()

	fake := &keychain.FakeClient{}
	fake.Seed(keychain.DefaultService, "snowflake_password", "hunter2")
	cfg := newCredentialsConfig(fake)

	out, err := runCredentials(t, cfg, "", "get", "SNOWFLAKE_PASSWORD")
	require.NoError(t, err)
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "hunter2")

	out, err = runCredentials(t, cfg, "", "get", "snowflake_password", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "hunter2")
}

func TestCredentialsGetCommand_MissingKey(t *testing.T) {
	t.Parallel()

	cfg := newCredentialsConfig(&keychain.FakeClient{})

	_, err := runCredentials(t, cfg, "", "get", "snowflake_password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credential stored")
}

func TestCredentialsDeleteCommand(t *testing.T) {
	t.Parallel()

	fake := &keychain.FakeClient{}
	fake.Seed(keychain.DefaultService, "snowflake_password", "hunter2")
	cfg := newCredentialsConfig(fake)

	_, err := runCredentials(t, cfg, "", "delete", "snowflake_password")
	require.NoError(t, err)
	assert.Empty(t, fake.Dump())
}

func TestCredentialsSetCommand_UnsupportedPlatform(t *testing.T) {
	t.Parallel()

	cfg := newCredentialsConfig(&keychain.FakeClient{Unavailable: true})

	_, err := runCredentials(t, cfg, "", "set", "snowflake_password", "--value", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwd1015/cloudconduit/internal/logging"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, `
snowflake:
  account: acct-default
  warehouse: WH_DEFAULT
  query_timeout: 120
databricks:
  catalog: main
s3:
  region_name: eu-west-1
`)

	var buf bytes.Buffer
	d := LoadDefaults(path, logging.NewWithWriter(&buf, false, true))

	v, ok := d.Get("snowflake", "account")
	assert.True(t, ok)
	assert.Equal(t, "acct-default", v)

	// Non-string scalars are stringified.
	v, ok = d.Get("snowflake", "query_timeout")
	assert.True(t, ok)
	assert.Equal(t, "120", v)

	v, ok = d.Get("s3", "region_name")
	assert.True(t, ok)
	assert.Equal(t, "eu-west-1", v)

	_, ok = d.Get("snowflake", "password")
	assert.False(t, ok)

	assert.Empty(t, buf.String(), "well-formed document must not warn")
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"), logging.NewWithWriter(&buf, false, true))

	assert.True(t, d.Empty())
	assert.Empty(t, buf.String(), "missing file is not a warning condition")
}

func TestLoadDefaultsMalformed(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, "snowflake: [unclosed\n  account: x\n")

	var buf bytes.Buffer
	d := LoadDefaults(path, logging.NewWithWriter(&buf, false, true))

	assert.True(t, d.Empty())
	warnings := strings.Count(buf.String(), "⚠")
	assert.Equal(t, 1, warnings, "malformed document warns exactly once")
}

func TestLoadDefaultsEmptyDocument(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, "")

	var buf bytes.Buffer
	d := LoadDefaults(path, logging.NewWithWriter(&buf, false, true))

	assert.True(t, d.Empty())
	assert.Empty(t, buf.String())
}

func TestLoadDefaultsNestedStructuresStayInRaw(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, `
snowflake:
  account: acct
  session_parameters:
    query_tag: etl
`)

	d := LoadDefaults(path, logging.NewWithWriter(&bytes.Buffer{}, false, true))

	_, ok := d.Get("snowflake", "session_parameters")
	assert.False(t, ok, "nested values are not resolvable")

	sf, ok := d.Raw["snowflake"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, sf, "session_parameters")
}

func TestDefaultPathHonorsEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", DefaultPath())
}

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwd1015/cloudconduit/internal/logging"
)

func TestWhoamiCommand(t *testing.T) {
	t.Parallel()

	cfg := &Config{Logger: logging.New(false, true)}
	cmd := NewWhoamiCommand(cfg)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "username")
	assert.Contains(t, out, "hostname")
	assert.Contains(t, out, "default_user_id")
	assert.Contains(t, out, "keychain_account")
	assert.Contains(t, out, "cloudconduit.")
}

func TestWhoamiCommand_DomainFlag(t *testing.T) {
	t.Parallel()

	cfg := &Config{Logger: logging.New(false, true)}
	cmd := NewWhoamiCommand(cfg)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--domain", "example.com"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "@example.com")
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terminai "github.com/terminai/terminai-api"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "terminai-api "+Version+"\n", out.String())
}

func TestDefaultVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", Version)
}

func TestRootCommandRequiresSecrets(t *testing.T) {
	t.Setenv(terminai.EnvUpstreamAPIKey, "")
	t.Setenv(terminai.EnvAPIKey, "")
	t.Setenv("TERMINAI_GENERATION_API_KEY", "")
	t.Setenv("TERMINAI_AUTH_API_KEY", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})

	err := cmd.Execute()
	require.ErrorIs(t, err, terminai.ErrMissingSecret)
	assert.Contains(t, err.Error(), terminai.EnvUpstreamAPIKey)
}

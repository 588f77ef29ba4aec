package publish_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vasker/fleetsim/internal/publish"
)

func TestLoadTokens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	content := []byte(`{
  "MIXER_001": "tok-mixer-1",
  "PUMP_SYSTEM_001": "tok-pump-1"
}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	store, err := publish.LoadTokens(path)
	require.NoError(t, err)

	tok, err := store.Resolve("MIXER_001")
	require.NoError(t, err)
	assert.Equal(t, publish.Credential("tok-mixer-1"), tok)

	_, err = store.Resolve("CNC_MACHINE_001")
	require.Error(t, err)
}

func TestLoadTokensMissingFile(t *testing.T) {
	_, err := publish.LoadTokens(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadTokensInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := publish.LoadTokens(path)
	require.Error(t, err)
}

func TestFallbackToken(t *testing.T) {
	store := publish.NewSingleToken("shared-token")

	tok, err := store.Resolve("ANY_DEVICE_001")
	require.NoError(t, err)
	assert.Equal(t, publish.Credential("shared-token"), tok)
}

func TestValidateReportsMissingDevices(t *testing.T) {
	store := publish.NewTokenStore(map[string]publish.Credential{
		"MIXER_001": "tok",
	})

	require.NoError(t, store.Validate([]string{"MIXER_001"}))

	err := store.Validate([]string{"MIXER_001", "PUMP_SYSTEM_001", "CNC_MACHINE_001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUMP_SYSTEM_001")
	assert.Contains(t, err.Error(), "CNC_MACHINE_001")
}

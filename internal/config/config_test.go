package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vasker/fleetsim/internal/config"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// setArgs replaces os.Args for the duration of the test so the test
// binary's own flags do not leak into Load.
func setArgs(t *testing.T, args ...string) {
	t.Helper()

	old := os.Args
	os.Args = append([]string{"fleetsim"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fleetsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
interval = 5.0
seed = 42
mixers = 2
cnc = 0
hydraulic = 0
conveyors = 0
pumps = 1
protocol = "mqtt"
host = "platform.local"
port = 1884
qos = 1
tokens_file = "/etc/fleetsim/tokens.json"
retry_limit = 4
retry_backoff = "250ms"
grace_period = "2s"
export_json = "/var/log/fleetsim/payloads.jsonl"
log_level = "debug"

[noise_amplitude]
RTD_PT100 = 0.5

[anomaly_probability]
POWER_METER = 0.2
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Interval)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.Mixers)
	assert.Equal(t, 0, cfg.CNC)
	assert.Equal(t, 1, cfg.Pumps)
	assert.Equal(t, "mqtt", cfg.Protocol)
	assert.Equal(t, "platform.local", cfg.Host)
	assert.Equal(t, 1884, cfg.Port)
	assert.Equal(t, "/etc/fleetsim/tokens.json", cfg.TokensFile)
	assert.Equal(t, 4, cfg.RetryLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 2*time.Second, cfg.GracePeriod)
	assert.Equal(t, "/var/log/fleetsim/payloads.jsonl", cfg.ExportJSON)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.5, cfg.NoiseAmplitude["RTD_PT100"])
	assert.Equal(t, 0.2, cfg.AnomalyProbability["POWER_METER"])
}

func TestLoadDefaults(t *testing.T) {
	setArgs(t)
	t.Setenv("FLEETSIM_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultMixers, cfg.Mixers)
	assert.Equal(t, config.DefaultCNC, cfg.CNC)
	assert.Equal(t, config.DefaultHydraulic, cfg.Hydraulic)
	assert.Equal(t, config.DefaultConveyors, cfg.Conveyors)
	assert.Equal(t, config.DefaultPumps, cfg.Pumps)
	assert.Equal(t, "none", cfg.Protocol)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.GracePeriod)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
log_level = "invalid"
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestInvalidProtocol(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
protocol = "carrier-pigeon"
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown protocol")
}

func TestEmptyFleetRejected(t *testing.T) {
	setArgs(t, "--mixers", "0", "--cnc", "0", "--hydraulic", "0", "--conveyors", "0", "--pumps", "0")
	t.Setenv("FLEETSIM_CONFIG", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one machine")
}

func TestFlagsOverrideFile(t *testing.T) {
	configPath := writeConfig(t, `
interval = 5.0
mixers = 2
log_level = "error"
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)
	setArgs(t, "--interval", "1.5", "--log-level", "debug", "--machine-type", "MIXER,PUMP_SYSTEM")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 1.5, cfg.Interval)
	assert.Equal(t, 2, cfg.Mixers, "file value survives when no flag is set")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []machine.Type{machine.Mixer, machine.PumpSystem}, cfg.Filter())
}

func TestInvalidMachineTypeFilter(t *testing.T) {
	setArgs(t, "--machine-type", "TOASTER")
	t.Setenv("FLEETSIM_CONFIG", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestCountsAndOverrides(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
mixers = 1
cnc = 2
hydraulic = 3
conveyors = 4
pumps = 5

[noise_amplitude]
RTD_PT100 = 0.25
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	counts := cfg.Counts()
	assert.Equal(t, 1, counts[machine.Mixer])
	assert.Equal(t, 2, counts[machine.CNCMachine])
	assert.Equal(t, 3, counts[machine.HydraulicPress])
	assert.Equal(t, 4, counts[machine.ConveyorSystem])
	assert.Equal(t, 5, counts[machine.PumpSystem])

	ov := cfg.Overrides()
	assert.Equal(t, 0.25, ov.Noise["RTD_PT100"])
	assert.Empty(t, ov.Anomaly)
}

func TestPlatformPortDefaults(t *testing.T) {
	cfg := &config.Config{Protocol: "mqtt"}
	assert.Equal(t, 1883, cfg.PlatformPort())

	cfg = &config.Config{Protocol: "http"}
	assert.Equal(t, 8080, cfg.PlatformPort())

	cfg = &config.Config{Protocol: "http", Port: 9090}
	assert.Equal(t, 9090, cfg.PlatformPort())
}

func TestCredentialsFromEnvironment(t *testing.T) {
	setArgs(t)
	configPath := writeConfig(t, `
protocol = "influx"
influx_url = "http://influx.local:8086"
influx_org = "factory"
influx_bucket = "telemetry"
`)
	t.Setenv("FLEETSIM_CONFIG", configPath)
	t.Setenv("FLEETSIM_INFLUX_TOKEN", "influx-secret")
	t.Setenv("FLEETSIM_ACCESS_TOKEN", "shared-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	// Tokens have no flag and no config file entry here; they must still
	// arrive through the environment.
	assert.Equal(t, "influx-secret", cfg.InfluxToken)
	assert.Equal(t, "shared-secret", cfg.AccessToken)
	assert.Equal(t, "http://influx.local:8086", cfg.InfluxURL)
	assert.Equal(t, "factory", cfg.InfluxOrg)
	assert.Equal(t, "telemetry", cfg.InfluxBucket)
}

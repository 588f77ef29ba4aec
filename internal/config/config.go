package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/machine"
	"codeberg.org/vasker/fleetsim/internal/sensor"
)

type Config struct {
	// Simulation
	Interval float64 `mapstructure:"interval"` // seconds between ticks
	Duration int     `mapstructure:"duration"` // seconds to run, 0 = until signal
	Seed     int64   `mapstructure:"seed"`

	// Fleet composition
	Mixers       int      `mapstructure:"mixers"`
	CNC          int      `mapstructure:"cnc"`
	Hydraulic    int      `mapstructure:"hydraulic"`
	Conveyors    int      `mapstructure:"conveyors"`
	Pumps        int      `mapstructure:"pumps"`
	MachineTypes []string `mapstructure:"machine_types"` // empty = all types

	// Sensor tuning, keyed by sensor type name
	NoiseAmplitude     map[string]float64 `mapstructure:"noise_amplitude"`
	AnomalyProbability map[string]float64 `mapstructure:"anomaly_probability"`

	// Telemetry platform
	Protocol    string `mapstructure:"protocol"` // mqtt, http, influx or none
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	TLS         bool   `mapstructure:"tls"`
	QoS         int    `mapstructure:"qos"`
	TokensFile  string `mapstructure:"tokens_file"`
	AccessToken string `mapstructure:"access_token"` // shared token fallback

	// InfluxDB sink
	InfluxURL    string `mapstructure:"influx_url"`
	InfluxToken  string `mapstructure:"influx_token"`
	InfluxOrg    string `mapstructure:"influx_org"`
	InfluxBucket string `mapstructure:"influx_bucket"`

	// Dispatch
	ComputeLimit  int           `mapstructure:"compute_limit"`
	DispatchLimit int           `mapstructure:"dispatch_limit"`
	QueueDepth    int           `mapstructure:"queue_depth"`
	RetryLimit    int           `mapstructure:"retry_limit"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	GracePeriod   time.Duration `mapstructure:"grace_period"`

	// Local export
	ExportJSON string `mapstructure:"export_json"`
	ArchiveDB  string `mapstructure:"archive_db"`
	BatchSize  int    `mapstructure:"batch_size"`

	// Logging
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	// Local .env files carry platform credentials during development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("fleetsim", pflag.ContinueOnError)
	defineFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetConfigType("toml")
	if path := os.Getenv("FLEETSIM_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	} else {
		v.SetConfigName("fleetsim")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
			}
		}
	}

	v.SetEnvPrefix("FLEETSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Flags set on the command line override file and environment values.
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if f.Name == "machine-type" {
			types, _ := fs.GetStringSlice(f.Name)
			v.Set("machine_types", types)

			return
		}
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("duration", 0)
	v.SetDefault("seed", 0)

	v.SetDefault("mixers", DefaultMixers)
	v.SetDefault("cnc", DefaultCNC)
	v.SetDefault("hydraulic", DefaultHydraulic)
	v.SetDefault("conveyors", DefaultConveyors)
	v.SetDefault("pumps", DefaultPumps)

	v.SetDefault("machine_types", []string{})

	v.SetDefault("protocol", "none")
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 0)
	v.SetDefault("tls", false)
	v.SetDefault("qos", DefaultQoS)
	v.SetDefault("tokens_file", "")
	v.SetDefault("access_token", "")

	// Credentials have no flags; defaults register the keys so AutomaticEnv
	// can surface FLEETSIM_INFLUX_TOKEN and friends during Unmarshal.
	v.SetDefault("influx_url", "")
	v.SetDefault("influx_token", "")
	v.SetDefault("influx_org", "")
	v.SetDefault("influx_bucket", "")

	v.SetDefault("compute_limit", 0) // 0 = number of CPUs
	v.SetDefault("dispatch_limit", 8)
	v.SetDefault("queue_depth", 4)
	v.SetDefault("retry_limit", DefaultRetryLimit)
	v.SetDefault("retry_backoff", "500ms")
	v.SetDefault("grace_period", "5s")

	v.SetDefault("export_json", "")
	v.SetDefault("archive_db", "")
	v.SetDefault("batch_size", 64)

	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", DefaultLogLevel)
}

func defineFlags(fs *pflag.FlagSet) {
	fs.Float64("interval", DefaultInterval, "Seconds between simulation ticks")
	fs.Int("duration", 0, "Seconds to run before stopping (0 = run until signalled)")
	fs.Int64("seed", 0, "Random seed (0 = derive from current time)")

	fs.Int("mixers", DefaultMixers, "Number of mixers in the fleet")
	fs.Int("cnc", DefaultCNC, "Number of CNC machines in the fleet")
	fs.Int("hydraulic", DefaultHydraulic, "Number of hydraulic presses in the fleet")
	fs.Int("conveyors", DefaultConveyors, "Number of conveyor systems in the fleet")
	fs.Int("pumps", DefaultPumps, "Number of pump systems in the fleet")
	fs.StringSlice("machine-type", nil, "Restrict the fleet to these machine types")

	fs.String("protocol", "none", "Telemetry transport: mqtt, http, influx or none")
	fs.String("host", "localhost", "Telemetry platform host")
	fs.Int("port", 0, "Telemetry platform port (0 = protocol default)")
	fs.Bool("tls", false, "Use TLS for the HTTP transport")
	fs.Int("qos", DefaultQoS, "MQTT quality of service level")
	fs.String("tokens-file", "", "JSON file mapping device IDs to access tokens")
	fs.String("access-token", "", "Shared access token for all devices")

	// No influx-token flag: the token comes from the config file or the
	// FLEETSIM_INFLUX_TOKEN environment variable so it never shows up in
	// process listings.
	fs.String("influx-url", "", "InfluxDB server URL")
	fs.String("influx-org", "", "InfluxDB organization")
	fs.String("influx-bucket", "", "InfluxDB bucket")

	fs.Int("dispatch-limit", 8, "Maximum concurrent deliveries")
	fs.Int("retry-limit", DefaultRetryLimit, "Delivery attempts per payload before dropping it")
	fs.Duration("retry-backoff", 500*time.Millisecond, "Initial delay between delivery attempts")
	fs.Duration("grace-period", 5*time.Second, "Time allowed for in-flight deliveries on shutdown")

	fs.String("export-json", "", "Append payloads to this JSON-lines file")
	fs.String("archive-db", "", "Archive readings into this SQLite database")

	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	switch c.Protocol {
	case "mqtt", "http", "influx", "none":
	default:
		return errFactory.WithMessage(errors.ErrInvalidConfig, "Unknown protocol").WithData(c.Protocol)
	}

	if c.QoS < 0 || c.QoS > 2 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "QoS must be 0, 1 or 2").WithData(c.QoS)
	}

	if c.RetryLimit < 1 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "Retry limit must be >= 1").WithData(c.RetryLimit)
	}

	for _, raw := range c.MachineTypes {
		if _, err := machine.ParseType(raw); err != nil {
			return err
		}
	}

	counts := []int{c.Mixers, c.CNC, c.Hydraulic, c.Conveyors, c.Pumps}
	total := 0
	for _, n := range counts {
		if n < 0 {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "Machine counts must be >= 0").WithData(n)
		}
		total += n
	}
	if total == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "Fleet must contain at least one machine")
	}

	return nil
}

// Counts maps machine types to the configured instance counts.
func (c *Config) Counts() map[machine.Type]int {
	return map[machine.Type]int{
		machine.Mixer:          c.Mixers,
		machine.CNCMachine:     c.CNC,
		machine.HydraulicPress: c.Hydraulic,
		machine.ConveyorSystem: c.Conveyors,
		machine.PumpSystem:     c.Pumps,
	}
}

// Filter returns the parsed machine type filter.
func (c *Config) Filter() []machine.Type {
	types := make([]machine.Type, 0, len(c.MachineTypes))
	for _, raw := range c.MachineTypes {
		typ, err := machine.ParseType(raw)
		if err != nil {
			continue // already rejected by Validate
		}
		types = append(types, typ)
	}

	return types
}

// Overrides returns the configured per-sensor-type parameter overrides.
func (c *Config) Overrides() sensor.Overrides {
	ov := sensor.Overrides{}

	if len(c.NoiseAmplitude) > 0 {
		ov.Noise = make(map[sensor.Kind]float64, len(c.NoiseAmplitude))
		for name, value := range c.NoiseAmplitude {
			ov.Noise[sensor.Kind(name)] = value
		}
	}
	if len(c.AnomalyProbability) > 0 {
		ov.Anomaly = make(map[sensor.Kind]float64, len(c.AnomalyProbability))
		for name, value := range c.AnomalyProbability {
			ov.Anomaly[sensor.Kind(name)] = value
		}
	}

	return ov
}

// PlatformPort returns the configured port, or the protocol default.
func (c *Config) PlatformPort() int {
	if c.Port != 0 {
		return c.Port
	}
	switch c.Protocol {
	case "http":
		return DefaultHTTPPort
	default:
		return DefaultMQTTPort
	}
}

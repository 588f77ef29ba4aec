package config

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// DefaultLogLevel is used when neither file, environment nor flags set one.
const DefaultLogLevel = string(LogLevelInfo)

// Default fleet composition, matching a mid-size factory floor.
const (
	DefaultMixers    = 5
	DefaultCNC       = 10
	DefaultHydraulic = 7
	DefaultConveyors = 8
	DefaultPumps     = 6
)

const (
	DefaultInterval   = 10.0 // seconds
	DefaultMQTTPort   = 1883
	DefaultHTTPPort   = 8080
	DefaultQoS        = 1
	DefaultRetryLimit = 3
)

package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig      ErrorCode = "invalid_configuration"
	ErrMissingConfig      ErrorCode = "missing_configuration"
	ErrBindFlags          ErrorCode = "bind_flags_failed"
	ErrReadConfig         ErrorCode = "read_config_failed"
	ErrInvalidInterval    ErrorCode = "invalid_interval"
	ErrInvalidMachineType ErrorCode = "invalid_machine_type"
	ErrMissingCredential  ErrorCode = "missing_credential"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp       ErrorCode = "init_app_failed"
	ErrMainLoop      ErrorCode = "main_loop_failed"
	ErrBuildFleet    ErrorCode = "build_fleet_failed"
	ErrInitPublisher ErrorCode = "init_publisher_failed"
	ErrInitExporter  ErrorCode = "init_exporter_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Generation errors
	ErrGeneration    ErrorCode = "generation_out_of_domain"
	ErrUnknownSensor ErrorCode = "unknown_sensor_type"

	// Dispatch errors
	ErrDispatch          ErrorCode = "dispatch_failed"
	ErrDispatchExhausted ErrorCode = "dispatch_retries_exhausted"
	ErrSchedulerOverrun  ErrorCode = "scheduler_overrun"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:           "Internal error occurred",
	ErrInvalidArgument:    "Invalid argument provided",
	ErrUnavailable:        "Service unavailable",
	ErrAlreadyRunning:     "Another instance is already running",
	ErrInvalidConfig:      "Invalid configuration",
	ErrMissingConfig:      "Missing configuration",
	ErrBindFlags:          "Failed to bind flags",
	ErrReadConfig:         "Failed to read configuration",
	ErrInvalidInterval:    "Invalid interval value",
	ErrInvalidMachineType: "Unknown machine type",
	ErrMissingCredential:  "Missing device credential",
	ErrInvalidLogLevel:    "Invalid log level",
	ErrInitFailed:         "Initialization failed",
	ErrShutdownFailed:     "Shutdown failed",
	ErrInitApp:            "Failed to initialize application",
	ErrMainLoop:           "Error in main loop",
	ErrBuildFleet:         "Failed to build machine fleet",
	ErrInitPublisher:      "Failed to initialize telemetry publisher",
	ErrInitExporter:       "Failed to initialize exporter",
	ErrOperationFailed:    "Operation failed",
	ErrTimeout:            "Operation timed out",
	ErrInvalidOperation:   "Invalid operation",
	ErrGeneration:         "Generated value outside sensor domain",
	ErrUnknownSensor:      "Unknown sensor type",
	ErrDispatch:           "Failed to dispatch payload",
	ErrDispatchExhausted:  "Dispatch retries exhausted, payload dropped",
	ErrSchedulerOverrun:   "Tick exceeded configured interval",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}

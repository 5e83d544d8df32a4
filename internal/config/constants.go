package config

// Application constants for the pricelist extraction toolchain
const (
	// Application Info
	AppName    = "plx"
	AppVersion = "0.3.0"

	// File Paths (relative to executable)
	DefaultDataDir  = "data"
	DefaultLogsDir  = "logs"
	MappingsDirName = "mappings"

	// DefaultMappingName is the field-mapping document loaded when no
	// mapping is selected explicitly.
	DefaultMappingName = "default.yaml"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

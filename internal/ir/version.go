package ir

// Version constants for the record schema and the runtime.
const (
	// IRVersion is the canonical record schema version.
	IRVersion = "1"

	// RuntimeVersion is the treasury runtime version.
	RuntimeVersion = "0.1.0"
)

package ir

// Version constants for the IR schema and the tool.
const (
	// IRVersion is the encoded IR schema version.
	IRVersion = "1"

	// ToolVersion is the inkdc version.
	ToolVersion = "0.1.0"
)

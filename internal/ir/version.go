package ir

// Version constants for the event schema and engine.
const (
	// SchemaVersion is the version of the Event and Fact JSON shapes.
	SchemaVersion = "1"

	// EngineVersion is the prodsys engine version.
	EngineVersion = "0.1.0"
)

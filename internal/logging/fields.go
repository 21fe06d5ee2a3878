package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType categorizes log lines for filtering and alerting.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next diagnostic step for a failure.
	FieldErrorHint = "error_hint"
	// FieldSessionID is the standardized key for daemon run session identifiers.
	FieldSessionID = "session_id"
	// FieldGeneration is the standardized key for selection generation numbers.
	FieldGeneration = "generation"
	// FieldJobID is the standardized key for translation job identifiers.
	FieldJobID = "job_id"
	// FieldElement is the standardized key for element identifiers.
	FieldElement = "element_id"
	// FieldState is the standardized key for selection controller states.
	FieldState = "state"
)

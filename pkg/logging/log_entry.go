package logging

// LogEntry is a structured log record with fields relevant to evolution runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	RunID      string // Identifier of the evolution run, if any
	Generation int    // Generation number within the run, -1 when unset

	// General structured data
	Fields map[string]interface{}
}

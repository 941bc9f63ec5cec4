package scriptforge

import "time"

// OutputType selects what Generate produces.
type OutputType string

// Output type constants.
const (
	Scene   OutputType = "script"
	Outline OutputType = "outline"
)

// Generation is produced content plus where it came from.
type Generation struct {
	Content    string
	OutputType OutputType
	// FromModel is false when the deterministic composer wrote the content.
	FromModel bool
	// FallbackReason explains a fallback: not_configured, provider_error, empty_response or canceled.
	FallbackReason string
}

// Structure is the parsed shape of a screenplay.
type Structure struct {
	Scenes       []string
	Characters   []string
	Dialogue     []string // "NAME: line"
	Descriptions []string
}

// Script is one corpus entry.
type Script struct {
	ID        string
	Filename  string // empty for trained scripts
	Content   string
	Metadata  map[string]any
	Parsed    Structure
	Timestamp time.Time // zero for files loaded from disk
}

// TrainInput is a script submitted to the corpus. ScriptID is generated when empty.
type TrainInput struct {
	Content  string
	ScriptID string
	Metadata map[string]any
}

// HealthStatus reports client state.
type HealthStatus struct {
	Status         string // always "healthy"
	CorpusSize     int
	ProviderActive bool
	ProviderStatus string // configured, not_configured, reachable, unreachable
	Timestamp      time.Time
}

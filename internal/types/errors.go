package types

import "fmt"

// MalformedTranscriptError reports bad input timings. Fatal: matching never
// starts for the run.
type MalformedTranscriptError struct {
	Source   string
	Sentence int // index of the offending sentence
	Word     int // index of the offending word within the sentence, -1 if n/a
	Reason   string
}

func (e *MalformedTranscriptError) Error() string {
	if e.Word >= 0 {
		return fmt.Sprintf("malformed transcript %s: sentence %d word %d: %s", e.Source, e.Sentence, e.Word, e.Reason)
	}
	return fmt.Sprintf("malformed transcript %s: sentence %d: %s", e.Source, e.Sentence, e.Reason)
}

// InvalidQueryError reports a query that cannot be compiled. Fatal: scanning
// never starts.
type InvalidQueryError struct {
	Pattern string
	Reason  string
}

func (e *InvalidQueryError) Error() string {
	if e.Pattern == "" {
		return "invalid query: " + e.Reason
	}
	return fmt.Sprintf("invalid query %q: %s", e.Pattern, e.Reason)
}

// InvalidConfigurationError reports bad padding/duration/merge parameters.
// Fatal: refinement never starts.
type InvalidConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%g: %s", e.Field, e.Value, e.Reason)
}

// RenderError reports a failure of the external media backend. The edit plan
// survives the failure so the caller can log or retry it.
type RenderError struct {
	SegmentIndex int // -1 when no single segment is at fault
	Source       string
	Err          error
}

func (e *RenderError) Error() string {
	if e.SegmentIndex < 0 {
		return fmt.Sprintf("render: %v", e.Err)
	}
	return fmt.Sprintf("render segment %d (%s): %v", e.SegmentIndex, e.Source, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

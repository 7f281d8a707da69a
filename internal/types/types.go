package types

// Word is a single recognized word with its timing, in seconds from the
// start of the source file.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"word"`
}

// Sentence is one utterance: a contiguous run of words as delimited by the
// recognizer. Start/End are derived from the first and last word when word
// timings exist; sentence-only transcripts (e.g. SRT) carry them directly.
type Sentence struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"content"`
	Words []Word  `json:"words,omitempty"`
}

// Duration returns the sentence length in seconds.
func (s Sentence) Duration() float64 { return s.End - s.Start }

// Transcript is the normalized, validated speech of one source file.
// Immutable once loaded for a run.
type Transcript struct {
	SourcePath string     `json:"source"`
	Sentences  []Sentence `json:"sentences"`
}

// Match is a raw query hit inside one transcript. Its time range always lies
// within the source transcript.
type Match struct {
	SourcePath  string  `json:"file"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	MatchedText string  `json:"content"`
}

// Segment is a refined, padded time range ready for composition.
// Invariant: End > Start.
type Segment struct {
	SourcePath string  `json:"file"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"content,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// EditPlan is the terminal artifact of a run: an ordered list of segments
// plus the global composition parameters. It is immutable once built.
type EditPlan struct {
	Segments []Segment `json:"segments"`

	// ResyncGap is the pause in seconds inserted between consecutive
	// segments drawn from different source files.
	ResyncGap float64 `json:"resync_gap_seconds"`

	// MaxTotalDuration is the duration budget the plan was built against.
	// Zero means unlimited.
	MaxTotalDuration float64 `json:"total_duration_budget,omitempty"`
}

// TotalDuration sums segment durations, excluding resync gaps.
func (p EditPlan) TotalDuration() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Duration()
	}
	return total
}

// SearchMode selects how the query pattern is interpreted.
type SearchMode string

const (
	// SearchLiteral is a case-insensitive substring test per sentence.
	SearchLiteral SearchMode = "literal"
	// SearchRegex tests a regular expression per sentence and narrows the
	// hit to the minimal covering word span.
	SearchRegex SearchMode = "regex"
	// SearchFuzzy matches sentences whose token overlap with the query
	// meets a threshold.
	SearchFuzzy SearchMode = "fuzzy"
	// SearchFragment matches a run of words against the word stream so the
	// hit covers exactly the queried words.
	SearchFragment SearchMode = "fragment"
	// SearchMash picks one random occurrence of each query word.
	SearchMash SearchMode = "mash"
)

// OrderMode selects how refined segments are ordered.
type OrderMode string

const (
	OrderSequential OrderMode = "sequential"
	OrderRandom     OrderMode = "random"
	OrderLengthAsc  OrderMode = "length"
	OrderLengthDesc OrderMode = "length-desc"
)

// Package transcript owns loading and validating word-level transcripts.
package transcript

import (
	"sort"
	"strings"

	"github.com/forPelevin/supercut/internal/types"
)

// Load validates raw sentence timings and returns an immutable transcript.
// Word timings must be non-negative, non-decreasing, and non-overlapping
// across the whole file; sentence bounds are recomputed from words when word
// timings exist. Violations fail with *types.MalformedTranscriptError.
func Load(sourcePath string, sentences []types.Sentence) (types.Transcript, error) {
	out := make([]types.Sentence, 0, len(sentences))
	prevEnd := 0.0
	for si, s := range sentences {
		if len(s.Words) == 0 {
			if s.Start < 0 {
				return types.Transcript{}, malformed(sourcePath, si, -1, "negative start time")
			}
			if s.End < s.Start {
				return types.Transcript{}, malformed(sourcePath, si, -1, "end before start")
			}
			if s.Start < prevEnd {
				return types.Transcript{}, malformed(sourcePath, si, -1, "overlaps previous sentence")
			}
			prevEnd = s.End
			out = append(out, types.Sentence{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
			continue
		}

		words := make([]types.Word, 0, len(s.Words))
		for wi, w := range s.Words {
			if w.Start < 0 {
				return types.Transcript{}, malformed(sourcePath, si, wi, "negative start time")
			}
			if w.End < w.Start {
				return types.Transcript{}, malformed(sourcePath, si, wi, "negative duration")
			}
			if w.Start < prevEnd {
				return types.Transcript{}, malformed(sourcePath, si, wi, "non-monotonic timing")
			}
			prevEnd = w.End
			words = append(words, types.Word{Start: w.Start, End: w.End, Text: strings.TrimSpace(w.Text)})
		}

		text := strings.TrimSpace(s.Text)
		if text == "" {
			text = JoinWords(words)
		}
		out = append(out, types.Sentence{
			Start: words[0].Start,
			End:   words[len(words)-1].End,
			Text:  text,
			Words: words,
		})
	}
	return types.Transcript{SourcePath: sourcePath, Sentences: out}, nil
}

// Duration returns the end time of the last sentence, in seconds.
func Duration(tr types.Transcript) float64 {
	if len(tr.Sentences) == 0 {
		return 0
	}
	return tr.Sentences[len(tr.Sentences)-1].End
}

// FindSentenceContaining returns the sentence whose span covers t.
func FindSentenceContaining(tr types.Transcript, t float64) (types.Sentence, bool) {
	i := sort.Search(len(tr.Sentences), func(i int) bool {
		return tr.Sentences[i].End >= t
	})
	if i == len(tr.Sentences) || tr.Sentences[i].Start > t {
		return types.Sentence{}, false
	}
	return tr.Sentences[i], true
}

// Words flattens the transcript into its word stream, in time order.
func Words(tr types.Transcript) []types.Word {
	var out []types.Word
	for _, s := range tr.Sentences {
		out = append(out, s.Words...)
	}
	return out
}

// JoinWords concatenates word texts with single spaces.
func JoinWords(words []types.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w.Text != "" {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

func malformed(source string, sentence, word int, reason string) error {
	return &types.MalformedTranscriptError{Source: source, Sentence: sentence, Word: word, Reason: reason}
}

package subfile

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/forPelevin/supercut/internal/types"
)

// Recognizers emit timestamps as JSON numbers with uneven precision; decimal
// parsing keeps them exact until the final float conversion.
type jsonSentence struct {
	Content string          `json:"content"`
	Text    string          `json:"text"`
	Start   decimal.Decimal `json:"start"`
	End     decimal.Decimal `json:"end"`
	Words   []jsonWord      `json:"words"`
}

type jsonWord struct {
	Word  string           `json:"word"`
	Start *decimal.Decimal `json:"start"`
	End   *decimal.Decimal `json:"end"`
}

// parseJSON accepts both common word-level layouts: a bare array of sentences
// (vosk) and an object wrapping a "segments" array (whisper family).
func parseJSON(b []byte) ([]types.Sentence, error) {
	var raw []jsonSentence
	if err := json.Unmarshal(b, &raw); err != nil {
		var wrapped struct {
			Segments []jsonSentence `json:"segments"`
		}
		if err2 := json.Unmarshal(b, &wrapped); err2 != nil || wrapped.Segments == nil {
			return nil, fmt.Errorf("unrecognized transcript JSON: %w", err)
		}
		raw = wrapped.Segments
	}

	out := make([]types.Sentence, 0, len(raw))
	for _, s := range raw {
		text := s.Content
		if text == "" {
			text = s.Text
		}
		sentence := types.Sentence{
			Start: s.Start.InexactFloat64(),
			End:   s.End.InexactFloat64(),
			Text:  text,
		}
		for _, w := range s.Words {
			// some recognizers omit timings on filler words; those
			// words cannot anchor a cut and are skipped
			if w.Start == nil || w.End == nil {
				continue
			}
			sentence.Words = append(sentence.Words, types.Word{
				Start: w.Start.InexactFloat64(),
				End:   w.End.InexactFloat64(),
				Text:  w.Word,
			})
		}
		out = append(out, sentence)
	}
	return out, nil
}

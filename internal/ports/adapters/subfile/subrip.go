package subfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/supercut/internal/types"
)

// 00:00:01,000 or 00:01.000. SRT uses a comma, VTT a dot, and VTT may drop
// the hour field.
var reTimestamp = regexp.MustCompile(`(?:(\d+):)?(\d{1,2}):(\d{1,2})[,.](\d{1,3})`)

// parseSubRip reads SRT and WEBVTT cues into sentence-level timings. No word
// timings exist in these formats, so matches against them stay at sentence
// granularity.
func parseSubRip(content string) ([]types.Sentence, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var out []types.Sentence
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")

		cueAt := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				cueAt = i
				break
			}
		}
		if cueAt < 0 {
			continue // WEBVTT header, numeric counters, NOTE blocks
		}

		times := reTimestamp.FindAllStringSubmatch(lines[cueAt], 2)
		if len(times) != 2 {
			return nil, fmt.Errorf("bad cue timing %q", lines[cueAt])
		}
		start := cueSeconds(times[0])
		end := cueSeconds(times[1])

		text := strings.TrimSpace(strings.Join(lines[cueAt+1:], " "))
		if text == "" {
			continue
		}
		out = append(out, types.Sentence{Start: start, End: end, Text: text})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no cues found")
	}
	return out, nil
}

func cueSeconds(m []string) float64 {
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	ms, _ := strconv.Atoi((m[4] + "000")[:3])
	return float64(h*3600+min*60+s) + float64(ms)/1000
}

// Package subfile ingests transcripts from files sitting next to the media:
// word-level JSON produced by vosk/whisper-style recognizers, or SRT/VTT
// subtitles at sentence granularity.
package subfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/supercut/internal/transcript"
	"github.com/forPelevin/supercut/internal/types"
)

var subExts = []string{".json", ".srt", ".vtt"}

type Adapter struct {
	prefer string // extension tried first, e.g. ".srt"
}

func New(prefer string) *Adapter {
	if prefer != "" && !strings.HasPrefix(prefer, ".") {
		prefer = "." + prefer
	}
	return &Adapter{prefer: prefer}
}

// Ingest locates and parses the sibling transcript of mediaPath, then runs
// it through transcript validation. The transcript keeps mediaPath as its
// source so downstream segments cut from the media file, not the subtitle.
func (a *Adapter) Ingest(ctx context.Context, mediaPath string) (types.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return types.Transcript{}, err
	}

	subPath, err := a.Locate(mediaPath)
	if err != nil {
		return types.Transcript{}, err
	}
	slog.Debug("transcript located",
		slog.String("media", mediaPath),
		slog.String("transcript", subPath))

	b, err := os.ReadFile(subPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}

	var sentences []types.Sentence
	switch strings.ToLower(filepath.Ext(subPath)) {
	case ".json":
		sentences, err = parseJSON(b)
	case ".srt", ".vtt":
		sentences, err = parseSubRip(string(b))
	default:
		err = fmt.Errorf("unsupported transcript format %q", filepath.Ext(subPath))
	}
	if err != nil {
		return types.Transcript{}, fmt.Errorf("parse %s: %w", subPath, err)
	}

	return transcript.Load(mediaPath, sentences)
}

// Locate finds a transcript file next to the media file: same base name plus
// a known subtitle extension, optionally with a language tag in between
// ("talk.en.srt" matches "talk.mp4"). The preferred extension wins.
func (a *Adapter) Locate(mediaPath string) (string, error) {
	dir := filepath.Dir(mediaPath)
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}

	exts := subExts
	if a.prefer != "" {
		exts = append([]string{a.prefer}, subExts...)
	}
	for _, ext := range exts {
		// exact sibling first
		exact := filepath.Join(dir, base+ext)
		if _, err := os.Stat(exact); err == nil {
			return exact, nil
		}
		// then language-tagged variants
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasPrefix(name, base+".") || !strings.HasSuffix(name, ext) {
				continue
			}
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("no transcript found for %s (looked for %s)", mediaPath, strings.Join(exts, ", "))
}

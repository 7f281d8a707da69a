// Package ffmpeg renders an edit plan by cutting every segment from its
// source and concatenating the pieces with the concat demuxer.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/forPelevin/supercut/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Render cuts each segment into a temp dir, generates resync gap clips where
// the source file changes, and concatenates everything into outPath.
func (a *Adapter) Render(ctx context.Context, plan types.EditPlan, outPath string) error {
	if len(plan.Segments) == 0 {
		return &types.RenderError{SegmentIndex: -1, Err: fmt.Errorf("empty edit plan")}
	}

	tmp, err := os.MkdirTemp("", "supercut-*")
	if err != nil {
		return &types.RenderError{SegmentIndex: -1, Err: err}
	}
	defer os.RemoveAll(tmp)

	// media durations, probed once per distinct source, to clip segment
	// ends that padding pushed past the actual file length
	durations := make(map[string]float64)
	for i, s := range plan.Segments {
		if _, ok := durations[s.SourcePath]; ok {
			continue
		}
		d, err := a.ProbeDuration(ctx, s.SourcePath)
		if err != nil {
			return &types.RenderError{SegmentIndex: i, Source: s.SourcePath, Err: err}
		}
		durations[s.SourcePath] = d
	}

	var gapClip string
	if plan.ResyncGap > 0 {
		w, h, err := a.probeDimensions(ctx, plan.Segments[0].SourcePath)
		if err != nil {
			return &types.RenderError{SegmentIndex: 0, Source: plan.Segments[0].SourcePath, Err: err}
		}
		gapClip = filepath.Join(tmp, "gap.mp4")
		if err := a.renderGap(ctx, gapClip, w, h, plan.ResyncGap); err != nil {
			return &types.RenderError{SegmentIndex: -1, Err: err}
		}
	}

	var parts []string
	for i, s := range plan.Segments {
		start, end := s.Start, s.End
		if d := durations[s.SourcePath]; end > d {
			end = d
		}
		if end <= start {
			continue
		}
		part := filepath.Join(tmp, fmt.Sprintf("part_%05d.mp4", i))
		if err := a.cut(ctx, s.SourcePath, start, end, part); err != nil {
			return &types.RenderError{SegmentIndex: i, Source: s.SourcePath, Err: err}
		}
		if gapClip != "" && i > 0 && plan.Segments[i-1].SourcePath != s.SourcePath {
			parts = append(parts, gapClip)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return &types.RenderError{SegmentIndex: -1, Err: fmt.Errorf("no renderable segments")}
	}

	listPath := filepath.Join(tmp, "concat.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(parts)), 0o644); err != nil {
		return &types.RenderError{SegmentIndex: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return &types.RenderError{SegmentIndex: -1, Err: fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))}
	}
	return nil
}

// ExportClips cuts every segment into its own numbered file next to outPath:
// supercut.mp4 becomes supercut_00000.mp4, supercut_00001.mp4 and so on. Gap
// clips get numbers of their own so the files concatenate back in order.
func (a *Adapter) ExportClips(ctx context.Context, plan types.EditPlan, outPath string) error {
	if len(plan.Segments) == 0 {
		return &types.RenderError{SegmentIndex: -1, Err: fmt.Errorf("empty edit plan")}
	}

	durations := make(map[string]float64)
	for i, s := range plan.Segments {
		if _, ok := durations[s.SourcePath]; ok {
			continue
		}
		d, err := a.ProbeDuration(ctx, s.SourcePath)
		if err != nil {
			return &types.RenderError{SegmentIndex: i, Source: s.SourcePath, Err: err}
		}
		durations[s.SourcePath] = d
	}

	var gapW, gapH int
	if plan.ResyncGap > 0 {
		w, h, err := a.probeDimensions(ctx, plan.Segments[0].SourcePath)
		if err != nil {
			return &types.RenderError{SegmentIndex: 0, Source: plan.Segments[0].SourcePath, Err: err}
		}
		gapW, gapH = w, h
	}

	seq := 0
	for i, s := range plan.Segments {
		start, end := s.Start, s.End
		if d := durations[s.SourcePath]; end > d {
			end = d
		}
		if end <= start {
			continue
		}
		if plan.ResyncGap > 0 && i > 0 && plan.Segments[i-1].SourcePath != s.SourcePath {
			if err := a.renderGap(ctx, ClipPath(outPath, seq), gapW, gapH, plan.ResyncGap); err != nil {
				return &types.RenderError{SegmentIndex: -1, Err: err}
			}
			seq++
		}
		if err := a.cut(ctx, s.SourcePath, start, end, ClipPath(outPath, seq)); err != nil {
			return &types.RenderError{SegmentIndex: i, Source: s.SourcePath, Err: err}
		}
		seq++
	}
	if seq == 0 {
		return &types.RenderError{SegmentIndex: -1, Err: fmt.Errorf("no renderable segments")}
	}
	return nil
}

// ClipPath numbers an output file: base_00000.ext for sequence 0.
func ClipPath(outPath string, seq int) string {
	ext := filepath.Ext(outPath)
	base := strings.TrimSuffix(outPath, ext)
	return fmt.Sprintf("%s_%05d%s", base, seq, ext)
}

func (a *Adapter) cut(ctx context.Context, in string, start, end float64, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", FmtSeconds(start),
		"-to", FmtSeconds(end),
		"-i", in,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg cut: %w\n%s", err, string(b))
	}
	return nil
}

// renderGap writes a black, silent clip matching the supercut's frame size.
func (a *Adapter) renderGap(ctx context.Context, out string, w, h int, seconds float64) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:d=%s", w, h, FmtSeconds(seconds)),
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=mono:sample_rate=44100",
		"-t", FmtSeconds(seconds),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg gap clip: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func (a *Adapter) probeDimensions(ctx context.Context, in string) (int, int, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe dimensions: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("parse dimensions %q", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse dimensions %q: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse dimensions %q: %w", s, err)
	}
	return w, h, nil
}

// ConcatList builds the concat demuxer input. Single quotes in paths are
// closed, escaped, and reopened per the demuxer's quoting rules.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// FmtSeconds renders seconds with millisecond precision for ffmpeg args.
func FmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

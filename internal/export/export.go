// Package export writes an edit plan to formats that need no media backend:
// JSON, an m3u playlist for VLC, an mpv EDL for quick previewing, and a
// Final Cut Pro XML timeline for NLE import.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/supercut/internal/types"
)

// Write dispatches on the output extension. It reports whether the extension
// was an export format; a false return means the caller should render media
// instead.
func Write(p types.EditPlan, outPath string) (bool, error) {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".json":
		return true, WriteJSON(p, outPath)
	case ".m3u":
		return true, WriteM3U(p, outPath)
	case ".edl":
		return true, WriteEDL(p, outPath)
	case ".xml":
		return true, WriteFCPXML(p, outPath)
	}
	return false, nil
}

// WriteJSON writes the plan itself, indented for inspection.
func WriteJSON(p types.EditPlan, outPath string) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal edit plan: %w", err)
	}
	return os.WriteFile(outPath, append(b, '\n'), 0o644)
}

// WriteM3U writes a VLC playlist using start/stop-time options per clip.
func WriteM3U(p types.EditPlan, outPath string) error {
	var lines []string
	lines = append(lines, "#EXTM3U")
	for _, s := range p.Segments {
		lines = append(lines,
			"#EXTINF:",
			fmt.Sprintf("#EXTVLCOPT:start-time=%g", s.Start),
			fmt.Sprintf("#EXTVLCOPT:stop-time=%g", s.End),
			s.SourcePath,
		)
	}
	return os.WriteFile(outPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// WriteEDL writes an mpv EDL v0 playlist: absolute path, start, duration.
func WriteEDL(p types.EditPlan, outPath string) error {
	var lines []string
	lines = append(lines, "# mpv EDL v0")
	for _, s := range p.Segments {
		abs, err := filepath.Abs(s.SourcePath)
		if err != nil {
			abs = s.SourcePath
		}
		lines = append(lines, fmt.Sprintf("%s,%g,%g", abs, s.Start, s.Duration()))
	}
	return os.WriteFile(outPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// Listing renders the plan as demo output, one segment per line.
func Listing(p types.EditPlan) string {
	var b strings.Builder
	for _, s := range p.Segments {
		fmt.Fprintf(&b, "%s\t%g\t%g\t%s\n", s.SourcePath, s.Start, s.End, s.Text)
	}
	return b.String()
}

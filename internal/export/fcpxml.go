package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/supercut/internal/types"
)

// FCPXML interchange structs, trimmed to what Premiere and Resolve need to
// import a cut list: one asset per source file and a spine of asset-clips
// with gaps at source boundaries.
type fcpXML struct {
	XMLName   xml.Name     `xml:"fcpxml"`
	Version   string       `xml:"version,attr"`
	Resources fcpResources `xml:"resources"`
	Library   fcpLibrary   `xml:"library"`
}

type fcpResources struct {
	Assets []fcpAsset `xml:"asset"`
}

type fcpAsset struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Src      string `xml:"src,attr"`
	HasVideo string `xml:"hasVideo,attr"`
	HasAudio string `xml:"hasAudio,attr"`
}

type fcpLibrary struct {
	Event fcpEvent `xml:"event"`
}

type fcpEvent struct {
	Name    string     `xml:"name,attr"`
	Project fcpProject `xml:"project"`
}

type fcpProject struct {
	Name     string      `xml:"name,attr"`
	Sequence fcpSequence `xml:"sequence"`
}

type fcpSequence struct {
	Spine fcpSpine `xml:"spine"`
}

type fcpSpine struct {
	Items []fcpClip `xml:",any"`
}

// fcpClip is either an asset-clip or a gap; the XMLName decides which.
type fcpClip struct {
	XMLName  xml.Name
	Ref      string `xml:"ref,attr,omitempty"`
	Name     string `xml:"name,attr,omitempty"`
	Offset   string `xml:"offset,attr"`
	Start    string `xml:"start,attr,omitempty"`
	Duration string `xml:"duration,attr"`
}

// WriteFCPXML writes the plan as a Final Cut Pro XML timeline, importable by
// Premiere and Resolve. Offsets place the clips back to back on the spine;
// the resync gap becomes an explicit gap element at source boundaries.
func WriteFCPXML(p types.EditPlan, outPath string) error {
	doc := fcpXML{Version: "1.9"}

	ids := make(map[string]string)
	for _, s := range p.Segments {
		if _, ok := ids[s.SourcePath]; ok {
			continue
		}
		abs, err := filepath.Abs(s.SourcePath)
		if err != nil {
			abs = s.SourcePath
		}
		id := fmt.Sprintf("r%d", len(ids)+1)
		ids[s.SourcePath] = id
		name := strings.TrimSuffix(filepath.Base(s.SourcePath), filepath.Ext(s.SourcePath))
		doc.Resources.Assets = append(doc.Resources.Assets, fcpAsset{
			ID:       id,
			Name:     name,
			Src:      "file://" + abs,
			HasVideo: "1",
			HasAudio: "1",
		})
	}

	var offset float64
	spine := &doc.Library.Event.Project.Sequence.Spine
	for i, s := range p.Segments {
		if p.ResyncGap > 0 && i > 0 && p.Segments[i-1].SourcePath != s.SourcePath {
			spine.Items = append(spine.Items, fcpClip{
				XMLName:  xml.Name{Local: "gap"},
				Name:     "Gap",
				Offset:   fcpTime(offset),
				Duration: fcpTime(p.ResyncGap),
			})
			offset += p.ResyncGap
		}
		spine.Items = append(spine.Items, fcpClip{
			XMLName:  xml.Name{Local: "asset-clip"},
			Ref:      ids[s.SourcePath],
			Name:     s.Text,
			Offset:   fcpTime(offset),
			Start:    fcpTime(s.Start),
			Duration: fcpTime(s.Duration()),
		})
		offset += s.Duration()
	}

	projectName := strings.TrimSuffix(filepath.Base(outPath), filepath.Ext(outPath))
	doc.Library.Event.Name = projectName
	doc.Library.Event.Project.Name = projectName

	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fcpxml: %w", err)
	}
	out := xml.Header + "<!DOCTYPE fcpxml>\n" + string(b) + "\n"
	return os.WriteFile(outPath, []byte(out), 0o644)
}

// fcpTime renders seconds as an FCPXML rational time with millisecond
// precision.
func fcpTime(sec float64) string {
	return fmt.Sprintf("%d/1000s", int64(math.Round(sec*1000)))
}

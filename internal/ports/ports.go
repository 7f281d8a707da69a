package ports

import (
	"context"

	"github.com/forPelevin/supercut/internal/types"
)

// Ingestor supplies the validated transcript of one source file. Invoked at
// most once per source per run; retry is the caller's concern.
type Ingestor interface {
	Ingest(ctx context.Context, sourcePath string) (types.Transcript, error)
}

// Renderer hands an edit plan to the external media backend. Invoked at most
// once per run. A failure is reported as *types.RenderError carrying the
// first failing segment's index; the plan itself survives for retry.
type Renderer interface {
	Render(ctx context.Context, plan types.EditPlan, outPath string) error
}

// ClipExporter writes every plan segment as its own media file instead of a
// single supercut. Same error contract as Renderer.
type ClipExporter interface {
	ExportClips(ctx context.Context, plan types.EditPlan, outPath string) error
}

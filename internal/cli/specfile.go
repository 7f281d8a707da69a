package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/supercut/internal/pipeline"
)

// specFile is the YAML form of the query specification. Pointer fields
// distinguish "absent" from zero, so the file only touches what it sets.
type specFile struct {
	Mode         *string  `yaml:"mode"`
	Patterns     []string `yaml:"patterns"`
	Threshold    *float64 `yaml:"threshold"`
	ContextAware *bool    `yaml:"context_aware"`

	PadLead      *float64 `yaml:"pad_lead"`
	PadTrail     *float64 `yaml:"pad_trail"`
	AllowBleed   *bool    `yaml:"allow_bleed"`
	Shift        *float64 `yaml:"resync"`
	MergeGap     *float64 `yaml:"merge_gap"`
	KeepSeparate *bool    `yaml:"keep_separate"`
	MinDuration  *float64 `yaml:"min_duration"`
	MaxDuration  *float64 `yaml:"max_duration"`
	Order        *string  `yaml:"order"`
	Seed         *int64   `yaml:"seed"`

	PerSource        *int     `yaml:"per_source"`
	MaxResults       *int     `yaml:"max_results"`
	MaxTotalDuration *float64 `yaml:"max_total_duration"`
	ResyncGap        *float64 `yaml:"resync_gap"`
	Dedupe           *bool    `yaml:"dedupe"`
}

// applySpecFile overlays the YAML spec onto cfg. A value from the file wins
// only when its flag was left at the default, so explicit flags stay in
// charge.
func applySpecFile(cfg *pipeline.Config, path string, flags *pflag.FlagSet) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read spec file: %w", err)
	}
	var s specFile
	if err := yaml.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("parse spec file %s: %w", path, err)
	}

	changed := flags.Changed

	if len(s.Patterns) > 0 && !changed("search") {
		cfg.Patterns = s.Patterns
	}
	setString(&cfg.Mode, s.Mode, changed("search-type"))
	setFloat(&cfg.Threshold, s.Threshold, changed("threshold"))
	setBool(&cfg.ContextAware, s.ContextAware, changed("context-aware"))

	pad := changed("padding")
	setFloat(&cfg.PadLead, s.PadLead, pad || changed("pad-lead"))
	setFloat(&cfg.PadTrail, s.PadTrail, pad || changed("pad-trail"))
	setBool(&cfg.AllowBleed, s.AllowBleed, changed("allow-bleed"))
	setFloat(&cfg.Shift, s.Shift, changed("resync"))
	setFloat(&cfg.MergeGap, s.MergeGap, changed("merge-gap"))
	setBool(&cfg.KeepSeparate, s.KeepSeparate, changed("keep-separate"))
	setFloat(&cfg.MinDuration, s.MinDuration, changed("min-duration"))
	setFloat(&cfg.MaxDuration, s.MaxDuration, changed("max-duration"))
	setString(&cfg.Order, s.Order, changed("order"))
	setInt64(&cfg.Seed, s.Seed, changed("seed"))

	setInt(&cfg.PerSource, s.PerSource, changed("per-source"))
	setInt(&cfg.MaxResults, s.MaxResults, changed("max-clips"))
	setFloat(&cfg.MaxTotalDuration, s.MaxTotalDuration, changed("max-total-duration"))
	setFloat(&cfg.ResyncGap, s.ResyncGap, changed("resync-gap"))
	setBool(&cfg.Dedupe, s.Dedupe, changed("dedupe"))
	return nil
}

func setString(dst *string, v *string, flagWins bool) {
	if v != nil && !flagWins {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64, flagWins bool) {
	if v != nil && !flagWins {
		*dst = *v
	}
}

func setInt(dst *int, v *int, flagWins bool) {
	if v != nil && !flagWins {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64, flagWins bool) {
	if v != nil && !flagWins {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, flagWins bool) {
	if v != nil && !flagWins {
		*dst = *v
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixbatch/internal/config"
	"pixbatch/internal/convert"
)

// settingsFlags collects conversion overrides. Only flags the user set end
// up in the patch, so configured defaults survive.
type settingsFlags struct {
	format     string
	quality    int
	width      int
	height     int
	keepAspect bool
	outputDir  string
	threshold  int
	noExport   bool
	jsonOutput bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", "", "Output format: jpeg, png, or webp")
	flags.IntVarP(&f.quality, "quality", "q", 0, "Quality 1-100 (ignored for png)")
	flags.IntVar(&f.width, "width", 0, "Target width in pixels (0 keeps the source width)")
	flags.IntVar(&f.height, "height", 0, "Target height in pixels (0 keeps the source height)")
	flags.BoolVar(&f.keepAspect, "keep-aspect", true, "Maintain the source aspect ratio when resizing")
	flags.StringVarP(&f.outputDir, "output", "o", "", "Output directory (defaults to export.output_dir)")
	flags.IntVar(&f.threshold, "threshold", 0, "Largest count delivered as individual files; more are zipped")
	flags.BoolVar(&f.noExport, "no-export", false, "Convert without delivering outputs")
	flags.BoolVar(&f.jsonOutput, "json", false, "Emit JSON instead of tables")
}

func (f *settingsFlags) patch(cmd *cobra.Command) (convert.SettingsPatch, error) {
	var patch convert.SettingsPatch
	flags := cmd.Flags()
	if flags.Changed("format") {
		format, err := convert.ParseFormat(f.format)
		if err != nil {
			return patch, fmt.Errorf("--format: %w", err)
		}
		patch.Format = &format
	}
	if flags.Changed("quality") {
		q := f.quality
		patch.Quality = &q
	}
	if flags.Changed("width") {
		w := f.width
		patch.Width = &w
	}
	if flags.Changed("height") {
		h := f.height
		patch.Height = &h
	}
	if flags.Changed("keep-aspect") {
		keep := f.keepAspect
		patch.MaintainAspectRatio = &keep
	}
	return patch, nil
}

// mergePatch overlays the set fields of top onto base.
func mergePatch(base, top convert.SettingsPatch) convert.SettingsPatch {
	if top.Format != nil {
		base.Format = top.Format
	}
	if top.Quality != nil {
		base.Quality = top.Quality
	}
	if top.Width != nil {
		base.Width = top.Width
	}
	if top.Height != nil {
		base.Height = top.Height
	}
	if top.MaintainAspectRatio != nil {
		base.MaintainAspectRatio = top.MaintainAspectRatio
	}
	return base
}

// applyExport returns a copy of cfg with the output and threshold flags
// applied.
func (f *settingsFlags) applyExport(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	flags := cmd.Flags()
	if flags.Changed("output") {
		dir, err := config.ExpandPath(f.outputDir)
		if err != nil {
			return nil, fmt.Errorf("--output: %w", err)
		}
		out.Export.OutputDir = dir
	}
	if flags.Changed("threshold") {
		if f.threshold < 1 {
			return nil, fmt.Errorf("--threshold must be at least 1, got %d", f.threshold)
		}
		out.Export.IndividualThreshold = f.threshold
	}
	return &out, nil
}

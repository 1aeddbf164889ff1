package build

import (
	"sync/atomic"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/fragments"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// BuildState carries mutable state across stages of one pipeline run.
type BuildState struct {
	Config   *config.Config
	Recorder metrics.Recorder
	Report   *BuildReport

	OutputDir  string
	Platform   string // platform tag this run renders
	ContentDir string // resolved content dir (may point into a git checkout)

	Model  *site.Model
	Engine *render.Engine

	fallbacks fallbackCounter
}

// fallbackCounter wraps a Recorder and counts fragment resolutions that
// did not hit the requested platform exactly. The count lands in the
// build report so authors can spot missing platform variants.
type fallbackCounter struct {
	metrics.Recorder
	n atomic.Int64
}

func (f *fallbackCounter) IncFragmentResolution(match string) {
	if match != string(fragments.MatchExact) {
		f.n.Add(1)
	}
	f.Recorder.IncFragmentResolution(match)
}

func newBuildState(cfg *config.Config, rec metrics.Recorder, outputDir, platform string) *BuildState {
	return &BuildState{
		Config:     cfg,
		Recorder:   rec,
		Report:     newBuildReport(platform),
		OutputDir:  outputDir,
		Platform:   platform,
		ContentDir: cfg.Content.Dir,
	}
}

// Package build runs the stage-based site generation pipeline:
// prepare_output, fetch_source, load_model, render_pages, copy_static.
// One run renders the site for a single platform tag; the dev server does
// per-request platform selection instead.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// Options tunes one pipeline run.
type Options struct {
	OutputDir string // overrides config output dir when non-empty
	Platform  string // overrides the default platform when non-empty
	Recorder  metrics.Recorder
}

// Pipeline generates a static site from configuration.
type Pipeline struct {
	cfg      *config.Config
	recorder metrics.Recorder
	output   string
	platform string
}

// New constructs a pipeline.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	out := opts.OutputDir
	if out == "" {
		out = cfg.Output.Directory
	}
	platform := opts.Platform
	if platform == "" {
		platform = cfg.Platforms.Default
	}
	if !cfg.IsSupportedPlatform(platform) {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	return &Pipeline{cfg: cfg, recorder: rec, output: out, platform: platform}, nil
}

// Run executes all stages and returns the report. The report is returned
// even on failure so callers can surface partial results.
func (p *Pipeline) Run(ctx context.Context) (*BuildReport, error) {
	bs := newBuildState(p.cfg, p.recorder, p.output, p.platform)
	start := time.Now()

	err := runStages(ctx, bs, []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageFetchSource, stageFetchSource},
		{StageLoadModel, stageLoadModel},
		{StageRenderPages, stageRenderPages},
		{StageCopyStatic, stageCopyStatic},
	})

	bs.Report.finish()
	p.recorder.ObserveBuildDuration(time.Since(start))
	p.recorder.IncBuildOutcome(string(bs.Report.Outcome))

	// Best-effort persist; a report write failure never masks the build error.
	if perr := bs.Report.Persist(p.output); perr != nil {
		slog.Warn("failed to persist build report", "error", perr)
	}

	if err != nil {
		return bs.Report, err
	}
	slog.Info("build complete",
		"outcome", bs.Report.Outcome,
		"routes", bs.Report.Routes,
		"pages", bs.Report.RenderedPages,
		"duration", time.Since(start).Round(time.Millisecond))
	return bs.Report, nil
}

func stagePrepareOutput(ctx context.Context, bs *BuildState) error {
	if bs.Config.Output.Clean {
		if err := os.RemoveAll(bs.OutputDir); err != nil {
			return fmt.Errorf("clean output dir: %w", err)
		}
	}
	if err := os.MkdirAll(bs.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

func stageFetchSource(ctx context.Context, bs *BuildState) error {
	if bs.Config.Content.Git == nil {
		return nil
	}
	local, err := source.Fetch(ctx, bs.Config.Content.Git, bs.Config.Content.Dir)
	if err != nil {
		return err
	}
	bs.ContentDir = local
	return nil
}

func stageLoadModel(ctx context.Context, bs *BuildState) error {
	cfg := *bs.Config
	cfg.Content.Dir = bs.ContentDir
	model, err := site.Load(&cfg)
	if err != nil {
		return err
	}
	bs.Model = model
	bs.Report.Routes = model.Tree.Len()
	bs.Report.Files = len(model.Files)

	bs.fallbacks.Recorder = bs.Recorder
	engine, err := render.NewEngine(bs.Config, &bs.fallbacks)
	if err != nil {
		return err
	}
	bs.Engine = engine
	return nil
}

func stageRenderPages(ctx context.Context, bs *BuildState) error {
	rendered := 0
	for _, entry := range bs.Model.Tree.Entries() {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageRenderPages, ctx.Err())
		default:
		}

		dst := pageOutputPath(bs.OutputDir, entry.URLPath)
		if err := writePage(dst, func(w io.Writer) error {
			return bs.Engine.RenderPage(w, bs.Model, entry, bs.Platform)
		}); err != nil {
			return err
		}
		rendered++
	}

	if err := writePage(filepath.Join(bs.OutputDir, "404.html"), func(w io.Writer) error {
		return bs.Engine.RenderNotFound(w, bs.Model, bs.Platform)
	}); err != nil {
		return err
	}

	bs.Report.RenderedPages = rendered
	bs.Report.FragmentFallbacks = int(bs.fallbacks.n.Load())
	bs.Recorder.IncPagesRendered(rendered)
	return nil
}

func stageCopyStatic(ctx context.Context, bs *BuildState) error {
	if err := render.WriteAssets(bs.OutputDir); err != nil {
		return fmt.Errorf("write built-in assets: %w", err)
	}

	// Images and other files referenced from pages keep their relative paths.
	for _, asset := range bs.Model.Assets() {
		dst := filepath.Join(bs.OutputDir, filepath.FromSlash(asset.RelativePath))
		if err := copyFile(asset.Path, dst); err != nil {
			return err
		}
	}

	if static := bs.Config.Content.StaticDir; static != "" {
		if _, err := os.Stat(static); err == nil {
			if err := copyDir(static, bs.OutputDir); err != nil {
				return fmt.Errorf("copy static dir: %w", err)
			}
		}
	}
	return nil
}

// pageOutputPath maps a URL path to its file: / -> index.html,
// /guide/install -> guide/install/index.html.
func pageOutputPath(outDir, urlPath string) string {
	if urlPath == "/" {
		return filepath.Join(outDir, "index.html")
	}
	return filepath.Join(outDir, filepath.FromSlash(urlPath[1:]), "index.html")
}

func writePage(dst string, renderFn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := renderFn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func copyDir(srcDir, dstDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(dstDir, rel))
	})
}

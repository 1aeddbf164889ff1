package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/server"
	"git.home.luguber.info/inful/docsite/internal/site"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docsite.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output   string `short:"o" help:"Output directory for the generated site"`
		Platform string `help:"Platform tag to render (defaults to the configured default)"`
	} `cmd:"" help:"Render the site to static HTML"`

	Serve struct {
		Port int `short:"p" help:"Override the configured dev server port"`
	} `cmd:"" help:"Serve the site locally with live rebuild on change"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Check struct{} `cmd:"" help:"Load content and verify routes and fragments without writing output"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "init":
		// Init runs before a config exists, so logging uses defaults.
		setupLogging(nil)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		setupLogging(nil)
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	switch ctx.Command() {
	case "build":
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(cfg); err != nil {
			slog.Error("Check failed", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level := config.LogLevelInfo
	format := config.LogFormatText
	if cfg != nil {
		level = config.NormalizeLogLevel(cfg.Logging.Level)
		format = config.NormalizeLogFormat(cfg.Logging.Format)
	}
	if CLI.Verbose {
		level = config.LogLevelDebug
	}

	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runBuild(cfg *config.Config) error {
	pipeline, err := build.New(cfg, build.Options{
		OutputDir: CLI.Build.Output,
		Platform:  CLI.Build.Platform,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx)
	if err != nil {
		if report != nil {
			slog.Error("Build did not complete", "outcome", report.Outcome, "id", report.ID)
		}
		return err
	}
	return nil
}

func runServe(cfg *config.Config) error {
	if CLI.Serve.Port != 0 {
		cfg.Serve.Port = CLI.Serve.Port
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// runCheck loads the full site model so route conflicts, undeclared
// sources and fragment duplicates surface without writing any output.
func runCheck(cfg *config.Config) error {
	model, err := site.Load(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("ok: %d routes, %d files, %d assets\n",
		model.Tree.Len(), len(model.Files), len(model.Assets()))
	for _, entry := range model.Tree.Entries() {
		fmt.Printf("  %-30s %s\n", entry.URLPath, entry.SourcePath)
	}
	return nil
}

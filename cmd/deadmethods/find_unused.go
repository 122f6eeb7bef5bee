package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/deadmethods/internal/logger"
	"github.com/panbanda/deadmethods/internal/output"
	"github.com/panbanda/deadmethods/internal/progress"
	"github.com/panbanda/deadmethods/pkg/analyzer"
	"github.com/panbanda/deadmethods/pkg/analyzer/unused"
	"github.com/panbanda/deadmethods/pkg/config"
)

func findUnusedCmd() *cli.Command {
	return &cli.Command{
		Name:    "find_unused",
		Aliases: []string{"find-unused", "fu"},
		Usage:   "List methods with no detected usage",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Definition directory relative to the root (repeatable, replaces configured dirs)",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, table, markdown, json, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent workers (0 = 2x NumCPU)",
			},
			&cli.BoolFlag{
				Name:  "no-strip-strings",
				Usage: "Keep string literal contents when stripping comments",
			},
			&cli.BoolFlag{
				Name:  "dedupe",
				Usage: "Report a name defined twice in one file only once",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
		},
		Action: runFindUnused,
	}
}

func runFindUnused(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyFindFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	formatName := c.String("format")
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	if err := output.ValidateFormat(formatName); err != nil {
		return err
	}

	log := logger.New(c.App.ErrWriter, c.Bool("verbose") || cfg.Output.Verbose)
	a, err := unused.New(cfg, unused.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracker *progress.Tracker
	if cfg.Output.Progress && !c.Bool("no-progress") {
		tracker = progress.NewTracker("Matching methods...", -1)
		ctx = analyzer.WithTracker(ctx, tracker.Analyzer())
	}

	report, err := a.Analyze(ctx, nil)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if report.Summary.SkippedFiles > 0 {
		log.Warnf("%d unreadable files were left out of the corpus", report.Summary.SkippedFiles)
	}

	path := c.String("output")
	formatter, err := output.NewFormatter(output.ParseFormat(formatName), path, cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewUnusedReport(report)); err != nil {
		return err
	}
	if path != "" {
		log.Infof("%d unused of %d definitions, report written to %s",
			report.Summary.TotalUnused, report.Summary.TotalDefinitions, path)
	}
	return nil
}

// loadConfig resolves the --config flag or the standard config locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	result, err := config.Resolve(c.String("config"))
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// applyFindFlags overrides config values with flags the user set explicitly.
func applyFindFlags(c *cli.Context, cfg *config.Config) {
	if dirs := c.StringSlice("dir"); len(dirs) > 0 {
		cfg.Scan.DefinitionDirs = dirs
	}
	if c.IsSet("root") {
		cfg.Scan.Root = c.String("root")
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if c.Bool("no-strip-strings") {
		cfg.Matcher.StripStrings = false
	}
	if c.Bool("dedupe") {
		cfg.Matcher.DedupeDefinitions = true
	}
}

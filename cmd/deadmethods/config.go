package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/deadmethods/internal/output"
	"github.com/panbanda/deadmethods/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a deadmethods configuration file for syntax errors and invalid values.

Examples:
  deadmethods config validate                          # Validates default config locations
  deadmethods -c deadmethods.toml config validate      # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file.

Examples:
  deadmethods config show              # Show effective config as TOML
  deadmethods config show --as yaml    # Show effective config as YAML`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "as",
						Value: "toml",
						Usage: "Output encoding: toml or yaml",
					},
				},
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	result, err := config.Resolve(c.String("config"))
	if err != nil {
		f := output.NewWriterFormatter(output.FormatText, c.App.Writer, true)
		f.Error("Configuration validation failed: %v", err)
		return err
	}

	cfg := result.Config
	f := output.NewWriterFormatter(output.FormatText, c.App.Writer, cfg.Output.Color)
	if result.Source != "" {
		f.Success("Configuration valid: %s", result.Source)
	} else {
		f.Info("No config file found. Default configuration is valid.")
	}
	for _, dir := range cfg.Scan.DefinitionDirs {
		if _, err := os.Stat(filepath.Join(cfg.Scan.Root, dir)); err != nil {
			f.Warning("definition directory %s not found under %s", dir, cfg.Scan.Root)
		}
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := config.Resolve(c.String("config"))
	if err != nil {
		return err
	}

	content, err := marshalConfig(result.Config, c.String("as"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}
	_, err = w.Write(content)
	return err
}

func marshalConfig(cfg *config.Config, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "toml":
		out, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return out, nil
	case "yaml", "yml":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q (want toml or yaml)", encoding)
	}
}

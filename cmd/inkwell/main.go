package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/inkwell/internal"
	pkgconfig "github.com/starford/inkwell/pkg/config"
)

var version = "dev"

const defaultConfigFile = "inkwell.yaml"

// loadConfig reads the config file named by --config. The default file may be
// absent; an explicit one must exist. --root overrides vault.root.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	path := cmd.String("config")
	load := pkgconfig.LoadOptional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if root := cmd.String("root"); root != "" {
		cfg.Vault.Root = root
	}
	return cfg, nil
}

// cliLogger logs to stderr so stdout stays clean for reports and MCP stdio.
func cliLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// openVault loads configuration and opens the vault services for a command.
func openVault(cmd *cli.Command) (*internal.Vault, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := cliLogger(cfg)
	v, err := internal.OpenVault(cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return v, logger, nil
}

func main() {
	cmd := &cli.Command{
		Name:    "inkwell",
		Usage:   "Ingest Markdown drafts into a flat-directory vault and keep its attachments tidy",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (YAML or TOML)",
				DefaultText: defaultConfigFile,
				Value:       defaultConfigFile,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Vault root directory (overrides vault.root)",
				Sources: cli.EnvVars("INKWELL_ROOT"),
			},
		},
		Commands: []*cli.Command{
			ingestCommand(),
			formatCommand(),
			orphansCommand(),
			refsCommand(),
			indexCommand(),
			serveCommand(),
			mcpCommand(),
			dailyCommand(),
			wordCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

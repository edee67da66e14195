package main

import (
	"context"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vaultprep/internal"
	"github.com/starford/vaultprep/internal/output"
	pkgconfig "github.com/starford/vaultprep/pkg/config"
)

const defaultConfigFile = "vaultprep.yaml"

// loadConfig reads the config file. An explicitly given file must exist; the
// default one is optional.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")

	var err error
	if cmd.IsSet("config") {
		err = pkgconfig.Load(path, cfg)
	} else {
		err = pkgconfig.LoadOptional(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if lvl := cmd.String("log-level"); lvl != "" {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lvl, err)
		}
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithJSON(cmd.Bool("json")),
	}
	if root := cmd.Args().First(); root != "" {
		opts = append(opts, internal.WithRoot(root))
	}
	return opts, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func watch(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Watch(ctx, opts...)
}

func publish(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Publish(ctx, opts...)
}

func history(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	opts = append(opts, internal.WithLimit(int(cmd.Int("limit"))))
	return internal.History(ctx, opts...)
}

func report(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Report(ctx, opts...)
}

// printError writes a fatal error as {"error": ...} to stdout in JSON mode so
// scripts read a single stream, and as a styled line to stderr otherwise.
func printError(stdout, stderr io.Writer, jsonMode bool, err error) {
	w := stderr
	if jsonMode {
		w = stdout
	}
	output.NewPrinter(w, jsonMode, output.IsTTY(w)).Error(err)
}

func main() {
	cmd := &cli.Command{
		Name:      "vaultprep",
		Usage:     "Normalize a notes vault into a static-site-ready content tree",
		ArgsUsage: "[content_dir]",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigFile,
				Value:       defaultConfigFile,
				Sources:     cli.EnvVars("VAULTPREP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("VAULTPREP_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print reports as JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "watch",
				Usage:     "Process the content tree and re-run on every change",
				ArgsUsage: "[content_dir]",
				Action:    watch,
			},
			{
				Name:   "publish",
				Usage:  "Copy selected vault notes into the site's notes collection",
				Action: publish,
			},
			{
				Name:  "history",
				Usage: "List recorded runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list",
						Value: 20,
					},
				},
				Action: history,
			},
			{
				Name:   "report",
				Usage:  "Show missing and duplicate assets of the latest recorded run",
				Action: report,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		printError(os.Stdout, os.Stderr, cmd.Bool("json"), err)
		os.Exit(1)
	}
}

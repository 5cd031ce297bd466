package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ferrant/inkwell/internal"
	"github.com/ferrant/inkwell/internal/index"
	"github.com/ferrant/inkwell/internal/lint"
	"github.com/ferrant/inkwell/internal/mcpserver"
	"github.com/ferrant/inkwell/internal/storage"
	pkgconfig "github.com/ferrant/inkwell/pkg/config"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	contentPath := cmd.String("content")
	if contentPath == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		contentPath = cfg.Content.Path
	}

	store, err := storage.NewFS(contentPath)
	if err != nil {
		return fmt.Errorf("open content dir: %w", err)
	}

	report, err := lint.Run(store)
	if err != nil {
		return fmt.Errorf("lint: %w", err)
	}

	for _, f := range report.Findings {
		fmt.Printf("%s: %s: %s\n", f.Severity, f.Path, f.Message)
	}
	fmt.Printf("%d file(s) checked, %d error(s), %d warning(s)\n",
		report.Checked, report.Errors(), report.Warnings())

	if report.HasErrors() {
		return cli.Exit("content check failed", 1)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// MCP uses stdout for the protocol; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(store, db).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "inkwell",
		Usage: "Blog content service with Markdown storage, YAML front-matter, full-text search, and an Atom feed",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP content API",
				Action: runServe,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "check",
				Usage:  "Lint the content tree (front-matter schema, dates, image references)",
				Action: runCheck,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "content",
						Usage: "Content directory to check (overrides config)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdin/stdout",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

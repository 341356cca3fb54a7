package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/agenda-search/internal"
	"github.com/starford/agenda-search/internal/searchservice"
	pkgconfig "github.com/starford/agenda-search/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if db := cmd.String("db"); db != "" {
		cfg.Agenda.DBPath = db
	}
	return cfg, nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	typ, err := searchservice.ParseType(cmd.String("type"))
	if err != nil {
		return err
	}
	req := searchservice.Request{
		Query:       strings.Join(cmd.Args().Slice(), " "),
		Type:        typ,
		ProjectOnly: cmd.Bool("project-only"),
	}
	return internal.RunSearch(ctx, req, internal.WithConfig(cfg))
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("action: expected one identifier, got %d arguments", cmd.Args().Len())
	}
	return internal.RunAction(ctx, cmd.Args().First(), internal.WithConfig(cfg))
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunServe(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:  "agenda-search",
		Usage: "Search Agenda notes and projects from a launcher",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the Agenda SQLite store (overrides agenda.db_path)",
				Sources: cli.EnvVars("AGENDA_DB_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search notes by title or projects by title and print Script Filter JSON",
				ArgsUsage: "[query]",
				Action:    runSearch,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "What to search for: t(i)tle or (p)roject",
						Value:   string(searchservice.TypeTitle),
					},
					&cli.BoolFlag{
						Name:    "project-only",
						Aliases: []string{"p"},
						Usage:   "Search projects only",
					},
				},
			},
			{
				Name:      "action",
				Usage:     "Print the agenda:// URL for an action identifier",
				ArgsUsage: "<id>",
				Action:    runAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the search API over HTTP",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the search tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

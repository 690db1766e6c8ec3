package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mtakada173/kibela-to-kibela/internal"
	pkgconfig "github.com/mtakada173/kibela-to-kibela/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Flags win over the config file.
	if cmd.Bool("apply") {
		cfg.Import.Apply = true
	}
	if cmd.Bool("private-groups") {
		cfg.Import.PrivateGroups = true
	}
	if v := cmd.String("exported-from"); v != "" {
		cfg.Import.ExportedFrom = v
	}
	if v := cmd.String("team"); v != "" {
		cfg.Kibela.Team = v
	}
	if v := cmd.String("token"); v != "" {
		cfg.Kibela.Token = v
	}

	return internal.Run(ctx,
		internal.WithConfig(cfg),
		internal.WithArchives(cmd.Args().Slice()...),
	)
}

func main() {
	cmd := &cli.Command{
		Name:      "kibela-import",
		Usage:     "Import Kibela export archives (notes, comments, attachments) into another Kibela team",
		ArgsUsage: "<export.zip> [<export.zip> ...]",
		Action:    run,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Apply the actual changes to the destination team; defaults to dry-run mode",
			},
			&cli.StringFlag{
				Name:  "exported-from",
				Usage: "Subdomain of the Kibela team the archives were exported from",
			},
			&cli.BoolFlag{
				Name:  "private-groups",
				Usage: "Create groups as private when they do not exist in the destination",
			},
			&cli.StringFlag{
				Name:    "team",
				Usage:   "Destination team subdomain",
				Sources: cli.EnvVars("KIBELA_TEAM"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Kibela API access token for the destination team",
				Sources: cli.EnvVars("KIBELA_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional YAML config file",
				Sources: cli.EnvVars("KIBELA_IMPORT_CONFIG"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("import error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

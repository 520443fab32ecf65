package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/database"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/store"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "modctl",
		Usage: "maintenance tool for the sphere moderation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(cctx *cli.Context) error {
			logging.Setup(cctx.String("log-level"))
			return nil
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "migrate",
			Usage:  "create or update database tables",
			Action: runMigrate,
		},
		{
			Name:   "stats",
			Usage:  "print moderation statistics as JSON",
			Action: runStats,
		},
		{
			Name:   "expire",
			Usage:  "reject pending reports whose voting period has elapsed",
			Action: runExpire,
		},
		simulateCommand,
	}
	app.RunAndExitOnError()
}

func openEngine(cfg *config.Config) (*moderation.Engine, func(), error) {
	thresholds, err := cfg.Thresholds()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	engine, err := moderation.NewEngine(moderation.Options{
		Reports:    store.NewReports(db),
		Contents:   store.NewContents(db),
		Thresholds: thresholds,
		Features:   cfg.Features(),
	})
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return engine, closeDB, nil
}

func runMigrate(cctx *cli.Context) error {
	db, err := database.Connect(config.Load())
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("migration complete")
	return nil
}

func runStats(cctx *cli.Context) error {
	engine, closeDB, err := openEngine(config.Load())
	if err != nil {
		return err
	}
	defer closeDB()

	stats, err := engine.GetStats(cctx.Context)
	if err != nil {
		return err
	}
	return printJSON(dto.NewStatsResponse(stats))
}

func runExpire(cctx *cli.Context) error {
	engine, closeDB, err := openEngine(config.Load())
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := engine.ExpireStale(contextOrBackground(cctx.Context))
	if err != nil {
		return err
	}
	return printJSON(dto.ExpireResponse{Resolved: n})
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

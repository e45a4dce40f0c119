package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/grocerease/grocerease-backend/internal/seed"
	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "cmd/seed/demo.yaml", "seed file to load")
	reset := flag.Bool("reset", false, "delete existing data before seeding")
	flag.Parse()

	data, err := seed.Load(*file)
	if err != nil {
		exitf("invalid seed file: %v", err)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"file": *file,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	seeder := seed.NewSeeder(dbClient.DB(), cfg.Password, logg)
	if *reset {
		if cfg.App.IsProd() {
			exitf("refusing to reset a production database")
		}
		if err := seeder.Reset(ctx); err != nil {
			exitf("reset failed: %v", err)
		}
		logg.Warn(ctx, "seed.reset")
	}

	sum, err := seeder.Apply(ctx, data)
	if err != nil {
		exitf("seed failed: %v", err)
	}
	fmt.Printf("seeded %d stores, %d users, %d items\n", sum.Stores, sum.Users, sum.Items)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

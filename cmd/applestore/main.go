package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"applestore/internal/config"
	applog "applestore/internal/log"
	"applestore/internal/rates"
	"applestore/internal/repos"
)

func main() {
	app := &cli.App{
		Name:  "applestore",
		Usage: "Apple products storefront with ARS pricing",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the storefront, API and background tasks",
				Action: serveCmd,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: migrateCmd,
			},
			{
				Name:   "seed",
				Usage:  "insert the sample catalog into an empty products table",
				Action: seedCmd,
			},
			{
				Name:   "rates",
				Usage:  "fetch and print the current dollar quotes",
				Action: ratesCmd,
			},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		applog.Error(nil, "app.exit", err, nil)
		os.Exit(1)
	}
}

// setup loads config and logging for every command.
func setup() (config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	closer, err := applog.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		applog.Warn(nil, "log.file.fail", err, map[string]any{"file": cfg.Log.File})
	}
	return cfg, func() { _ = closer.Close() }, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	if !cfg.PersistenceEnabled() {
		return nil, fmt.Errorf("persistence disabled: set DB_URL and DB_ACCESS_KEY")
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return repos.OpenDB(cfg.DB.Driver, dsn)
}

func migrateCmd(_ *cli.Context) error {
	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return repos.Migrate(db)
}

func seedCmd(c *cli.Context) error {
	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DB.AutoMigrate {
		if err := repos.Migrate(db); err != nil {
			return err
		}
	}
	n, err := repos.SeedIfEmpty(c.Context, repos.NewGateway(db, nil, nil))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "seeded %d products\n", n)
	return nil
}

func ratesCmd(c *cli.Context) error {
	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()
	ctx, cancel := context.WithTimeout(c.Context, cfg.Rates.Timeout+time.Second)
	defer cancel()
	q := rates.NewBluelytics(cfg.Rates.URL, cfg.Rates.Timeout, nil).Fetch(ctx)
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(q)
}

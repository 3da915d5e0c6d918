// AngelaMos | 2026
// db.go

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/buttuura/getcash/internal/admin"
	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/user"
)

var openDatabase = core.NewDatabase

// withDB loads config, connects to Postgres and closes the pool once fn
// returns.
func withDB(c *cli.Context, fn func(cfg *config.Config, db *core.Database) error) error {
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return err
	}

	db, err := openDatabase(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	return fn(cfg, db)
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print row counts for users, tasks, completions and withdrawals",
		Action: func(c *cli.Context) error {
			return withDB(c, func(_ *config.Config, db *core.Database) error {
				counts, err := admin.NewService(admin.NewRepository(db.DB)).Counts(c.Context)
				if err != nil {
					return err
				}

				w := c.App.Writer
				fmt.Fprintf(w, "users:           %d\n", counts.Users)
				fmt.Fprintf(w, "tasks:           %d\n", counts.Tasks)
				fmt.Fprintf(w, "completed tasks: %d\n", counts.CompletedTasks)
				fmt.Fprintf(w, "withdrawals:     %d\n", counts.Withdrawals)
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Dump users, tasks, completions and wallets as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file (stdout when empty)",
			},
		},
		Action: func(c *cli.Context) error {
			return withDB(c, func(_ *config.Config, db *core.Database) error {
				export, err := admin.NewService(admin.NewRepository(db.DB)).Export(c.Context)
				if err != nil {
					return err
				}

				var out io.Writer = c.App.Writer
				if path := c.String("out"); path != "" {
					f, err := os.Create(path)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					defer f.Close() //nolint:errcheck // closed after encode
					out = f
				}

				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(export)
			})
		},
	}
}

func cleanupCommand() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete completion records older than the given number of days",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Value: admin.DefaultCleanupDays,
				Usage: "age threshold in days",
			},
		},
		Action: func(c *cli.Context) error {
			return withDB(c, func(_ *config.Config, db *core.Database) error {
				n, err := admin.NewService(admin.NewRepository(db.DB)).Cleanup(c.Context, c.Int("days"))
				if err != nil {
					return err
				}

				fmt.Fprintf(c.App.Writer, "removed %d completion records\n", n)
				return nil
			})
		},
	}
}

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Create the configured admin account if it is missing",
		Action: func(c *cli.Context) error {
			return withDB(c, func(cfg *config.Config, db *core.Database) error {
				svc := user.NewService(user.NewRepository(db.DB))
				if err := svc.EnsureAdmin(c.Context, cfg.Admin); err != nil {
					return err
				}

				fmt.Fprintf(c.App.Writer, "admin account %q is present\n", cfg.Admin.Username)
				return nil
			})
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the embedded schema",
		Action: func(c *cli.Context) error {
			return withDB(c, func(_ *config.Config, db *core.Database) error {
				if err := core.Migrate(c.Context, db.DB); err != nil {
					return err
				}

				fmt.Fprintln(c.App.Writer, "schema up to date")
				return nil
			})
		},
	}
}

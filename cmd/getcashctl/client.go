// AngelaMos | 2026
// client.go

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/fallback"
	"github.com/buttuura/getcash/internal/wallet"
)

var errRejected = errors.New("request rejected")

func clientCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "server",
			Value:   cli.NewStringSlice("http://localhost:8080"),
			Usage:   "server base URLs, probed in order",
			EnvVars: []string{"GETCASH_SERVER_URLS"},
		},
		&cli.StringFlag{
			Name:    "mirror",
			Value:   "getcash-mirror.json",
			Usage:   "local mirror file used when no server answers",
			EnvVars: []string{"GETCASH_MIRROR_PATH"},
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			EnvVars: []string{"GETCASH_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			EnvVars: []string{"GETCASH_PASSWORD"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 10 * time.Second,
			Usage: "per-request timeout",
		},
		&cli.DurationFlag{
			Name:  "health-timeout",
			Value: 3 * time.Second,
			Usage: "how long each server gets to answer GET /health",
		},
	}

	return &cli.Command{
		Name:  "client",
		Usage: "Drive the API, or the local mirror when it is unreachable",
		Flags: flags,
		Subcommands: []*cli.Command{
			{
				Name:  "tasks",
				Usage: "List available tasks",
				Action: clientAction(false, func(c *cli.Context, b fallback.Backend) (*fallback.Envelope, error) {
					return b.ListTasks(c.Context)
				}),
			},
			{
				Name:  "complete",
				Usage: "Complete a task and credit the wallet",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "task", Required: true, Usage: "task id"},
				},
				Action: clientAction(true, func(c *cli.Context, b fallback.Backend) (*fallback.Envelope, error) {
					return b.CompleteTask(c.Context, c.Int64("task"))
				}),
			},
			{
				Name:  "wallet",
				Usage: "Show wallet balance and tariff",
				Action: clientAction(true, func(c *cli.Context, b fallback.Backend) (*fallback.Envelope, error) {
					return b.UserData(c.Context)
				}),
			},
			{
				Name:  "withdraw",
				Usage: "Request a mobile money payout from the personal wallet",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "amount", Required: true, Usage: "amount in UGX"},
					&cli.StringFlag{Name: "phone", Required: true},
					&cli.StringFlag{Name: "recipient", Required: true, Usage: "recipient name"},
					&cli.StringFlag{Name: "network", Value: "MTN"},
				},
				Action: clientAction(true, func(c *cli.Context, b fallback.Backend) (*fallback.Envelope, error) {
					return b.RequestWithdrawal(c.Context, wallet.WithdrawalRequest{
						Amount:        c.Int64("amount"),
						Phone:         c.String("phone"),
						RecipientName: c.String("recipient"),
						Network:       c.String("network"),
					})
				}),
			},
		},
	}
}

type clientOp func(c *cli.Context, b fallback.Backend) (*fallback.Envelope, error)

// clientAction opens a backend with the admin account and reward rules from
// the shared config file, so the mirror seeds and charges like the server.
func clientAction(needsLogin bool, op clientOp) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadClient(c.String(configFlag.Name))
		if err != nil {
			return err
		}

		backend, err := fallback.Open(c.Context, fallback.Options{
			ServerURLs:     c.StringSlice("server"),
			MirrorPath:     c.String("mirror"),
			ProbeTimeout:   c.Duration("health-timeout"),
			RequestTimeout: c.Duration("timeout"),
			Admin:          cfg.Admin,
			Rewards:        cfg.Rewards,
		})
		if err != nil {
			return err
		}

		if needsLogin || c.String("username") != "" {
			env, err := backend.Login(c.Context, c.String("username"), c.String("password"))
			if err != nil {
				return err
			}
			if !env.Success {
				return fmt.Errorf("login: %s: %w", env.Message, errRejected)
			}
		}

		env, err := op(c, backend)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return err
		}

		if !env.Success && !env.AlreadyCompleted {
			return errRejected
		}
		return nil
	}
}

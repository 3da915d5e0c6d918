// AngelaMos | 2026
// main.go

package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Value:   "config.yaml",
	Usage:   "path to config file",
	EnvVars: []string{"GETCASH_CONFIG"},
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "getcashctl",
		Usage: "GetCash operator tool",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			statsCommand(),
			exportCommand(),
			cleanupCommand(),
			adminCommand(),
			migrateCommand(),
			clientCommand(),
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coursefind/internal/config"
	logpkg "github.com/kailas-cloud/coursefind/internal/logger"
	"github.com/kailas-cloud/coursefind/internal/version"
)

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "coursefind:", err)
		os.Exit(1)
	}
}

func newCLI(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:    "coursefind",
		Usage:   "Semantic search over a course catalog",
		Version: version.String(),
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (default: config/<env>.yaml)",
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment; selects config/<env>.yaml and the log format",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Override catalog.path",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			searchCommand(),
			suggestCommand(),
			warmCommand(),
		},
	}
}

// loadConfig reads the --config file, or config/<env>.yaml when unset.
func loadConfig(c *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(c.String("env"))
	}
	if err != nil {
		return config.Config{}, err
	}
	if p := c.String("catalog"); p != "" {
		cfg.Catalog.Path = p
	}
	return cfg, nil
}

// newLogger builds the server logger for serve and a terse stderr logger for
// one-shot commands. --log-level beats logging.level for both.
func newLogger(c *cli.Context, cfg config.Config, server bool) (*zap.Logger, error) {
	level := c.String("log-level")
	env := logpkg.EnvCLI
	if server {
		env = c.String("env")
		if level == "" {
			level = cfg.Logging.Level
		}
	}
	return logpkg.NewLogger(env, level)
}

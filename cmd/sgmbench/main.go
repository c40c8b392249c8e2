package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/openstereo/sgmbench/internal/config"
	"github.com/openstereo/sgmbench/internal/logger"
)

var (
	cfg        *config.Config
	rootLogger *zap.Logger
)

func main() {
	app := &cli.App{
		Name:  "sgmbench",
		Usage: "Benchmark and stream a GPU stereo semi-global-matching library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "sgmbench.yaml",
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"SGMBENCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "Override the configured log verbosity",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.LoadOrDefault(c.String("config"))
			if err != nil {
				return err
			}
			verbosity := cfg.Logger.Verbosity
			if v := c.String("verbosity"); v != "" {
				verbosity = v
			}
			rootLogger, err = logger.NewNamed(verbosity, "sgmbench")
			return err
		},
		Commands: []*cli.Command{
			timeCommand(),
			movieCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("run failed", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

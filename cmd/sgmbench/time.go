package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/openstereo/sgmbench/internal/bench"
	"github.com/openstereo/sgmbench/internal/gpu"
	"github.com/openstereo/sgmbench/internal/stereo"
)

func timeCommand() *cli.Command {
	return &cli.Command{
		Name:      "time",
		Usage:     "Measure the mean matcher execution time over one image pair",
		ArgsUsage: "<left-image-format> <right-image-format>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "disp_size",
				Value: 128,
				Usage: "maximum possible disparity value (64, 128 or 256)",
			},
			&cli.IntFlag{
				Name:  "start_number",
				Value: 0,
				Usage: "index of the image pair to measure",
			},
			&cli.IntFlag{
				Name:  "warmup",
				Usage: "number of discarded warm-up runs (overrides config)",
			},
			&cli.IntFlag{
				Name:  "runs",
				Usage: "number of measured runs (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("expected arguments: <left-image-format> <right-image-format>", 1)
			}
			figure.NewFigure("sgmbench", "", true).Print()

			log := rootLogger.Named("time")

			manager, err := gpu.NewManager(log.Named("gpu"), true)
			if err != nil {
				return err
			}
			defer manager.Cleanup()

			info := manager.GetDeviceInfo()
			log.Info("compute device selected",
				zap.String("backend", manager.BackendType()),
				zap.String("device", info.Name),
				zap.String("compute_capability", info.ComputeCapability))

			warmup := cfg.Bench.WarmupRuns
			if c.IsSet("warmup") {
				warmup = c.Int("warmup")
			}
			runs := cfg.Bench.MeasurementRuns
			if c.IsSet("runs") {
				runs = c.Int("runs")
			}

			runner := &bench.TimingRunner{
				Backend:    manager.GetBackend(),
				NewMatcher: stereo.NewMatcherFactory(log.Named("sgm")),
				Logger:     log,
			}

			result, err := runner.Run(bench.TimingOptions{
				LeftFormat:      c.Args().Get(0),
				RightFormat:     c.Args().Get(1),
				StartIndex:      c.Int("start_number"),
				DisparitySize:   c.Int("disp_size"),
				WarmupRuns:      warmup,
				MeasurementRuns: runs,
			})
			if err != nil {
				return err
			}

			fmt.Println("--------------------------------------------------")
			fmt.Printf("Average execution time over %d runs: %.2f ms\n",
				len(result.Durations), result.MeanMilliseconds())
			fmt.Println("--------------------------------------------------")
			return nil
		},
	}
}

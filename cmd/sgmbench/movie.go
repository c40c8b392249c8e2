package main

import (
	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/openstereo/sgmbench/internal/bench"
	"github.com/openstereo/sgmbench/internal/gpu"
	"github.com/openstereo/sgmbench/internal/metrics"
	"github.com/openstereo/sgmbench/internal/stereo"
)

func movieCommand() *cli.Command {
	return &cli.Command{
		Name:      "movie",
		Usage:     "Stream image pairs through the matcher and persist disparity maps",
		ArgsUsage: "<left-image-format> <right-image-format>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output_path",
				Value: ".",
				Usage: "path to the output directory for disparity maps",
			},
			&cli.IntFlag{
				Name:  "disp_size",
				Value: 128,
				Usage: "maximum possible disparity value (64, 128 or 256)",
			},
			&cli.IntFlag{
				Name:  "start_number",
				Value: 0,
				Usage: "index to start reading at",
			},
			&cli.IntFlag{
				Name:  "total_number",
				Value: 0,
				Usage: "number of image pairs to process",
			},
			&cli.BoolFlag{
				Name:  "skip_bad_frames",
				Usage: "skip frames that fail validation instead of aborting",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("expected arguments: <left-image-format> <right-image-format>", 1)
			}
			figure.NewFigure("sgmbench", "", true).Print()

			log := rootLogger.Named("movie")

			if addr := cfg.Metrics.ListenAddress; addr != "" {
				metrics.Serve(addr, log.Named("metrics"))
			}

			manager, err := gpu.NewManager(log.Named("gpu"), true)
			if err != nil {
				return err
			}
			defer manager.Cleanup()

			info := manager.GetDeviceInfo()
			log.Info("compute device selected",
				zap.String("backend", manager.BackendType()),
				zap.String("device", info.Name))

			skip := cfg.Movie.SkipBadFrames
			if c.IsSet("skip_bad_frames") {
				skip = c.Bool("skip_bad_frames")
			}

			runner := &bench.MovieRunner{
				Backend:    manager.GetBackend(),
				NewMatcher: stereo.NewMatcherFactory(log.Named("sgm")),
				Logger:     log,
			}

			result, err := runner.Run(bench.MovieOptions{
				LeftFormat:    c.Args().Get(0),
				RightFormat:   c.Args().Get(1),
				OutputDir:     c.String("output_path"),
				StartIndex:    c.Int("start_number"),
				TotalFrames:   c.Int("total_number"),
				DisparitySize: c.Int("disp_size"),
				SkipBadFrames: skip,
			})
			if err != nil {
				return err
			}

			log.Info("streaming finished",
				zap.Int("frames_processed", result.FramesProcessed),
				zap.Int("frames_persisted", result.FramesPersisted),
				zap.Int("write_failures", result.WriteFailures),
				zap.Int("frames_skipped", result.FramesSkipped))
			return nil
		},
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"iftseg/internal/models"
	"iftseg/pkg/config"
	"iftseg/pkg/edge"
	"iftseg/pkg/imageio"
	"iftseg/pkg/trace"
	"iftseg/pkg/visualization"
)

func main() {
	configPath := flag.String("config", "config.yaml", "YAML configuration file")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	inputPath := flag.String("input", "", "Image file, or directory of numbered slices for a 3D volume")
	maskPath := flag.String("mask", "", "Optional mask image; zero pixels are excluded")
	seedList := flag.String("seeds", "", "Seed pixels as \"x,y;x,y\" (x,y,z for volumes)")
	targetPoint := flag.String("target", "", "Pixel whose optimum path is extracted, as \"x,y\"")
	anchorList := flag.String("anchors", "", "Anchors of a closed contour to trace, as \"x,y;x,y\"")
	algorithm := flag.String("algorithm", "", "livewire, riverbed or both (overrides config)")
	outputDir := flag.String("output", "", "Output directory (overrides config)")
	env := flag.String("env", "", "local, dev or prod (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "\nEnvironment:")
		fmt.Fprintln(flag.CommandLine.Output(), config.Usage())
	}
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *inputPath == "" || (*seedList == "" && *anchorList == "") {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *algorithm != "" {
		cfg.Processing.Algorithm = *algorithm
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *env != "" {
		cfg.Env = *env
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := mustCreateLogger(cfg.Env, cfg.Output.Verbose)
	logger.Info("starting iftseg", slog.String("env", cfg.Env), slog.String("input", *inputPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	img, err := loadInput(*inputPath, cfg.Processing.SliceGap)
	if err != nil {
		logger.Error("failed to load input", slog.String("err", err.Error()))
		os.Exit(1)
	}
	var mask *models.Image
	if *maskPath != "" {
		if mask, err = loadInput(*maskPath, cfg.Processing.SliceGap); err != nil {
			logger.Error("failed to load mask", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}
	logger.Info("input loaded", slog.Any("dims", img.Dims))

	if *anchorList != "" {
		if err := runTrace(logger, cfg, img, mask, *anchorList); err != nil {
			logger.Error("tracing failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	if *seedList != "" {
		if err := runSeeds(ctx, logger, cfg, img, mask, *seedList, *targetPoint); err != nil {
			logger.Error("segmentation failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("done", slog.String("output", cfg.Output.Dir))
}

func loadInput(path string, sliceGap float64) (*models.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return imageio.LoadStack(path, sliceGap)
	}
	return imageio.Load(path)
}

// runSeeds computes the configured algorithms from the seed set, saves their
// cost maps and, with a target, the optimum path to it
func runSeeds(ctx context.Context, logger *slog.Logger, cfg *config.Config, img, mask *models.Image, seedList, targetPoint string) error {
	points, err := parsePoints(seedList, img.NDims())
	if err != nil {
		return err
	}
	seeds, err := models.SeedsAt(img.Shape, points...)
	if err != nil {
		return err
	}

	target := -1
	if targetPoint != "" {
		pts, err := parsePoints(targetPoint, img.NDims())
		if err != nil {
			return err
		}
		if len(pts) != 1 || !img.Contains(pts[0]) {
			return fmt.Errorf("target %q must be a single pixel inside the image", targetPoint)
		}
		target = img.Index(pts[0]...)
	}

	var jobs []edge.Job
	for _, alg := range cfg.Algorithms() {
		params, err := cfg.Params(alg)
		if err != nil {
			return err
		}
		jobs = append(jobs, edge.Job{Algorithm: alg, Image: img, Mask: mask, Seeds: seeds, Params: params})
	}

	start := time.Now()
	outcomes, err := edge.RunBatch(ctx, logger, jobs, cfg.Processing.NumCores)
	if err != nil {
		return err
	}
	logger.Info("batch finished", slog.Int("runs", len(outcomes)), slog.Duration("elapsed", time.Since(start)))

	base := visualization.NewViewer(img)
	for _, out := range outcomes {
		alg := string(out.Job.Algorithm)
		stats := out.Result.Stats()
		logger.Info("cost statistics",
			slog.String("algorithm", alg),
			slog.Int("reached", stats.Reached),
			slog.Int("roots", stats.Roots),
			slog.Float64("mean", stats.Mean),
			slog.Float64("stddev", stats.StdDev),
		)

		if cfg.Output.SaveCostMap {
			costs, err := visualization.NewCostViewer(out.Result)
			if err != nil {
				return err
			}
			if img.NDims() == 2 {
				slice, err := costs.ExtractSlice("z", 0)
				if err != nil {
					return err
				}
				if err := visualization.SaveSlice(slice, filepath.Join(cfg.Output.Dir, alg+"_cost.png")); err != nil {
					return err
				}
			} else if err := costs.SaveSliceSequence("z", filepath.Join(cfg.Output.Dir, alg+"_cost")); err != nil {
				return err
			}
		}
		if cfg.Output.SaveRaw {
			if err := visualization.SaveRaw(out.Result.Cost, filepath.Join(cfg.Output.Dir, alg+"_cost.raw")); err != nil {
				return err
			}
		}

		if target < 0 {
			continue
		}
		path, err := trace.Path(out.Result.Predecessor, target)
		if err != nil {
			return err
		}
		if !out.Result.Reached(target) {
			logger.Warn("target not reachable from any seed", slog.String("algorithm", alg))
			continue
		}
		logger.Info("optimum path extracted",
			slog.String("algorithm", alg),
			slog.Int("length", len(path)),
			slog.Float64("cost", out.Result.Cost[target]),
		)

		position := 0
		if img.NDims() == 3 {
			position = img.Coords(target, nil)[2]
		}
		overlay, err := base.Overlay(position, path, visualization.PathColor)
		if err != nil {
			return err
		}
		if err := visualization.SaveSlice(overlay, filepath.Join(cfg.Output.Dir, alg+"_path.png")); err != nil {
			return err
		}
	}
	return nil
}

// runTrace replays a list of anchors through a tracing session and saves
// the closed contour of each algorithm
func runTrace(logger *slog.Logger, cfg *config.Config, img, mask *models.Image, anchorList string) error {
	if img.NDims() != 2 {
		return fmt.Errorf("contour tracing needs a 2D image, got %d-D", img.NDims())
	}
	points, err := parsePoints(anchorList, 2)
	if err != nil {
		return err
	}

	base := visualization.NewViewer(img)
	for _, alg := range cfg.Algorithms() {
		params, err := cfg.Params(alg)
		if err != nil {
			return err
		}
		tr, err := trace.NewTracker(logger, img, mask, alg, params, cfg.Processing.SnapRadius)
		if err != nil {
			return err
		}
		for _, p := range points {
			if !img.Contains(p) {
				return fmt.Errorf("anchor %v outside %v", p, img.Dims)
			}
			if err := tr.AddAnchor(img.Index(p...)); err != nil {
				return err
			}
			if tr.Closed() {
				break
			}
		}
		if !tr.Closed() {
			if err := tr.Close(); err != nil {
				return err
			}
		}

		overlay, err := base.Overlay(0, tr.Contour(), visualization.PathColor)
		if err != nil {
			return err
		}
		if err := visualization.SaveSlice(overlay, filepath.Join(cfg.Output.Dir, string(alg)+"_contour.png")); err != nil {
			return err
		}
	}
	return nil
}

// mustCreateLogger builds the logger for env; verbose lowers the level to debug
func mustCreateLogger(env string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var logger *slog.Logger
	switch env {
	case config.EnvLocal:
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	case config.EnvDev:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	case config.EnvProd:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	default:
		log.Fatalf("unknown environment %q", env)
	}
	return logger
}

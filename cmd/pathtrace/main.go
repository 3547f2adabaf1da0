// Command pathtrace runs a headless progressive path tracing session: it
// builds a random sphere scene, brings up the GPU, and ticks the renderer
// for a fixed number of frames, simulating a short camera move partway
// through to exercise the accumulation reset.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/pathtrace"
	"github.com/gogpu/pathtrace/internal/gpu"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		width      = flag.Int("width", 0, "output width (overrides config)")
		height     = flag.Int("height", 0, "output height (overrides config)")
		frames     = flag.Int("frames", 0, "frames to render (overrides config)")
		seed       = flag.Uint64("seed", 0, "scene seed (overrides config)")
		logLevel   = flag.String("log", "info", "log level: debug, info, warn, error, or empty to disable")
	)
	flag.Parse()

	cfg := pathtrace.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = pathtrace.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}
	if *seed != 0 {
		cfg.SceneSeed = *seed
	}
	if *logLevel != "info" || cfg.LogLevel == "" {
		cfg.LogLevel = *logLevel
	}
	if cfg.Frames == 0 {
		cfg.Frames = 120
	}
	if err := cfg.Normalize(); err != nil {
		log.Fatalf("config: %v", err)
	}

	setupLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatalf("pathtrace: %v", err)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return // empty: keep the silent default logger
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	pathtrace.SetLogger(logger)
}

func run(cfg pathtrace.Config) error {
	scene := pathtrace.RandomScene(cfg.SceneSeed)
	camera := pathtrace.DefaultCamera()
	controller := pathtrace.NewCameraController(&camera)

	renderer, err := gpu.NewRenderer(gpu.RendererConfig{
		Width:  uint32(cfg.Width),
		Height: uint32(cfg.Height),
	})
	if err != nil {
		return err
	}
	defer renderer.Close()

	logger := pathtrace.Logger()
	logger.Info("session started",
		"adapter", renderer.AdapterName(),
		"spheres", scene.ActiveCount,
		"frames", cfg.Frames,
	)

	const dt = float32(1.0 / 60.0)
	dispatched := 0

	for frame := 0; frame < cfg.Frames; frame++ {
		// Nudge the camera for a few frames in the middle of the run so
		// the accumulation reset path gets exercised.
		var in pathtrace.InputSample
		if frame >= cfg.Frames/2 && frame < cfg.Frames/2+10 {
			in.YawL = true
		}
		controller.Apply(in, dt)

		info, err := renderer.Tick(&camera, &scene)
		if err != nil {
			return err
		}
		if info.Dispatched {
			dispatched++
			logger.Debug("tick",
				"frame", frame,
				"state", info.State.String(),
				"pipeline", info.Pipeline.String(),
				"written", info.Written,
			)
		}
	}

	logger.Info("session finished",
		"frames", cfg.Frames,
		"dispatched", dispatched,
		"state", renderer.State().String(),
	)
	return nil
}

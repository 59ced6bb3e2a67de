package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/menta2k/camera-analyzer/internal/config"
	"github.com/menta2k/camera-analyzer/internal/log"
	"github.com/menta2k/camera-analyzer/pkg/azure"
	"github.com/menta2k/camera-analyzer/pkg/capture"
	"github.com/menta2k/camera-analyzer/pkg/client"
	"github.com/menta2k/camera-analyzer/pkg/detection"
	"github.com/menta2k/camera-analyzer/pkg/device"
	"github.com/menta2k/camera-analyzer/pkg/llamacpp"
	"github.com/menta2k/camera-analyzer/pkg/ollama"
	"github.com/menta2k/camera-analyzer/pkg/processing"
)

// platform holds what run needs from the outside world
type platform struct {
	lookup     func(string) (string, bool)
	openCamera func(id int) (capture.Camera, error)
	openWindow capture.WindowOpener
	stdout     io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Init(os.Getenv(config.EnvLogLevel))
	if err := config.LoadEnvFile(); err != nil {
		log.Warn("ignoring .env file", "error", err)
	}

	// Errors are reported by run; the exit status is the same either way.
	_ = run(ctx, platform{
		lookup: os.LookupEnv,
		openCamera: func(id int) (capture.Camera, error) {
			return device.OpenCamera(id)
		},
		openWindow: func(title string) (capture.Display, error) {
			return device.NewWindow(title), nil
		},
		stdout: os.Stdout,
	})
}

func run(ctx context.Context, p platform) error {
	cfg, err := config.Load(p.lookup)
	if err != nil {
		log.Error("configuration error: set API_KEY and API_ENDPOINT in the environment or a .env file", "error", err)
		return err
	}
	log.Init(cfg.LogLevel)

	visionClient, err := newVisionClient(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		return err
	}

	camera, err := p.openCamera(cfg.CameraDevice)
	if err != nil {
		log.Error("cannot access the camera", "device", cfg.CameraDevice, "error", err)
		return fmt.Errorf("%w: %v", capture.ErrDevice, err)
	}

	preview, err := p.openWindow(capture.PreviewTitle)
	if err != nil {
		camera.Close()
		log.Error("cannot open the preview window", "error", err)
		return fmt.Errorf("%w: %v", capture.ErrDevice, err)
	}
	defer preview.Close()

	log.Info("camera ready", "device", cfg.CameraDevice, "backend", cfg.Backend)
	fmt.Fprintln(p.stdout, "Press SPACE to capture an image or ESC to quit")

	loop := capture.NewLoop(camera, preview, p.openWindow, detection.NewDetector(visionClient), capture.Options{
		ResultDisplay: cfg.ResultDisplay,
		KeyPoll:       cfg.KeyPoll,
		TempDir:       cfg.TempDir,
		JPEGQuality:   cfg.JPEGQuality,
		Caption:       processing.PersonCaption(cfg.Language),
		SaveDir:       cfg.SaveDir,
		SaveFormat:    cfg.SaveFormat,
		Output:        p.stdout,
		Logger:        log.L(),
	})
	if err := loop.Run(ctx); err != nil {
		log.Error("capture loop ended", "error", err)
		return err
	}
	return nil
}

func newVisionClient(cfg *config.Config) (client.VisionClient, error) {
	switch cfg.Backend {
	case config.BackendOllama:
		return ollama.NewClient(cfg.Endpoint, cfg.Model, cfg.Language)
	case config.BackendLlamaCpp:
		return llamacpp.NewClient(cfg.Endpoint, cfg.Model, cfg.Language)
	default:
		return azure.NewClient(cfg.Endpoint, cfg.APIKey, azure.WithLanguage(cfg.Language))
	}
}

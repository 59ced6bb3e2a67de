package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/menta2k/camera-analyzer/internal/log"
	"github.com/menta2k/camera-analyzer/internal/utils"
	"github.com/menta2k/camera-analyzer/pkg/detection"
	"github.com/menta2k/camera-analyzer/pkg/processing"
	"github.com/menta2k/camera-analyzer/pkg/types"
)

// Options tune the loop. Zero values fall back to DefaultOptions.
type Options struct {
	ResultDisplay time.Duration
	KeyPoll       time.Duration
	TempDir       string
	JPEGQuality   int
	Caption       string

	// SaveDir, when set, receives a copy of every annotated frame
	SaveDir    string
	SaveFormat string

	Output io.Writer
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the binary when nothing is configured
func DefaultOptions() Options {
	return Options{
		ResultDisplay: 5 * time.Second,
		KeyPoll:       time.Millisecond,
		TempDir:       ".",
		JPEGQuality:   95,
		Caption:       processing.PersonCaption("es"),
		SaveFormat:    "jpg",
	}
}

// Loop owns the camera for its whole lifetime
type Loop struct {
	camera    Camera
	preview   Display
	open      WindowOpener
	detector  *detection.Detector
	processor *processing.Processor
	opts      Options
	now       func() time.Time
}

// NewLoop creates a loop reading from camera, previewing on preview and
// opening results windows through open.
func NewLoop(camera Camera, preview Display, open WindowOpener, detector *detection.Detector, opts Options) *Loop {
	def := DefaultOptions()
	if opts.ResultDisplay <= 0 {
		opts.ResultDisplay = def.ResultDisplay
	}
	if opts.KeyPoll <= 0 {
		opts.KeyPoll = def.KeyPoll
	}
	if opts.TempDir == "" {
		opts.TempDir = def.TempDir
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = def.JPEGQuality
	}
	if opts.Caption == "" {
		opts.Caption = def.Caption
	}
	if opts.SaveFormat == "" {
		opts.SaveFormat = def.SaveFormat
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.L()
	}

	return &Loop{
		camera:    camera,
		preview:   preview,
		open:      open,
		detector:  detector,
		processor: processing.NewProcessor(),
		opts:      opts,
		now:       time.Now,
	}
}

// Run reads, shows and polls until the escape key, a cancelled context or a
// device failure. The camera is closed before Run returns. Failed capture
// cycles are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	logger := l.opts.Logger
	defer func() {
		if err := l.camera.Close(); err != nil {
			logger.Warn("closing camera failed", "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			logger.Info("capture loop stopped", "reason", err)
			return nil
		}

		frame, err := l.camera.Read()
		if err != nil {
			return fmt.Errorf("%w: cannot read frame from camera: %v", ErrDevice, err)
		}
		if err := l.preview.Show(frame); err != nil {
			return fmt.Errorf("%w: cannot show frame: %v", ErrDevice, err)
		}

		switch l.preview.WaitKey(l.opts.KeyPoll) {
		case KeyEscape:
			logger.Info("program finished by user")
			return nil
		case KeySpace:
			if _, err := l.Cycle(ctx, frame); err != nil {
				logger.Error("failed to analyze image", "error", err)
			}
		}
	}
}

// Cycle stages frame to a temporary artifact, sends it for analysis, prints
// the summary and shows the annotated frame for the configured duration. The
// artifact is removed whatever the outcome.
func (l *Loop) Cycle(ctx context.Context, frame image.Image) (*types.AnalysisResult, error) {
	fmt.Fprintln(l.opts.Output, "\nImage captured. Analyzing...")

	if err := l.processor.ValidateFrame(frame); err != nil {
		return nil, err
	}

	path := utils.TempArtifactPath(l.opts.TempDir)
	defer utils.RemoveQuietly(path)

	data, err := l.processor.StageFrame(frame, path, l.opts.JPEGQuality)
	if err != nil {
		return nil, err
	}

	started := l.now()
	result, err := l.detector.Detect(ctx, data, frame.Bounds())
	if err != nil {
		return nil, err
	}
	l.opts.Logger.Debug("analysis complete",
		"people", len(result.People),
		"objects", len(result.Objects),
		"bytes", len(data),
		"elapsed", l.now().Sub(started))

	PrintSummary(l.opts.Output, result)

	annotated := l.processor.Annotate(frame, result.People, l.opts.Caption)
	if l.opts.SaveDir != "" {
		l.saveSnapshot(annotated)
	}

	if err := l.showResults(annotated); err != nil {
		return result, err
	}
	return result, nil
}

func (l *Loop) showResults(img image.Image) error {
	win, err := l.open(ResultsTitle)
	if err != nil {
		return fmt.Errorf("cannot open results window: %w", err)
	}
	defer win.Close()

	if err := win.Show(img); err != nil {
		return fmt.Errorf("cannot show results: %w", err)
	}
	win.WaitKey(l.opts.ResultDisplay)
	return nil
}

func (l *Loop) saveSnapshot(img image.Image) {
	if err := utils.EnsureDir(l.opts.SaveDir); err != nil {
		l.opts.Logger.Warn("snapshot directory unavailable", "dir", l.opts.SaveDir, "error", err)
		return
	}
	path := utils.SnapshotFilename(l.opts.SaveDir, l.now(), l.opts.SaveFormat)
	if err := l.processor.SaveImage(img, path, l.opts.SaveFormat, l.opts.JPEGQuality); err != nil {
		l.opts.Logger.Warn("snapshot save failed", "path", path, "error", err)
		return
	}
	l.opts.Logger.Info("snapshot saved", "path", path)
}

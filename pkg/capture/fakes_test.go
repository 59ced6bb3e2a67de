package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

// createTestFrame creates a mid-gray frame
func createTestFrame(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{64, 64, 64, 255})
		}
	}
	return img
}

type fakeCamera struct {
	frame   image.Image
	failAt  int // 1-based read that fails, 0 = never
	reads   int
	closed  int
	readErr error
}

func (c *fakeCamera) Read() (image.Image, error) {
	c.reads++
	if c.closed > 0 {
		return nil, errors.New("read after close")
	}
	if c.failAt > 0 && c.reads >= c.failAt {
		if c.readErr != nil {
			return nil, c.readErr
		}
		return nil, errors.New("no frame")
	}
	return c.frame, nil
}

func (c *fakeCamera) Close() error {
	c.closed++
	return nil
}

type fakeDisplay struct {
	keys   []int
	shown  []image.Image
	waits  []time.Duration
	closed int
}

func (d *fakeDisplay) Show(img image.Image) error {
	d.shown = append(d.shown, img)
	return nil
}

func (d *fakeDisplay) WaitKey(timeout time.Duration) int {
	d.waits = append(d.waits, timeout)
	if len(d.keys) == 0 {
		return KeyEscape
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k
}

func (d *fakeDisplay) Close() error {
	d.closed++
	return nil
}

type windowRecorder struct {
	titles  []string
	windows []*fakeDisplay
}

func (r *windowRecorder) open(title string) (Display, error) {
	w := &fakeDisplay{}
	r.titles = append(r.titles, title)
	r.windows = append(r.windows, w)
	return w, nil
}

type stubClient struct {
	result *types.AnalysisResult
	err    error
	calls  int
	sizes  []int
}

func (s *stubClient) Analyze(ctx context.Context, img []byte) (*types.AnalysisResult, error) {
	s.calls++
	s.sizes = append(s.sizes, len(img))
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

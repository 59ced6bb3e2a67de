package detection

import (
	"context"
	"image"
	"strings"

	"github.com/menta2k/camera-analyzer/pkg/client"
	"github.com/menta2k/camera-analyzer/pkg/types"
)

// Detector runs a vision client and normalizes its answer to the analyzed frame
type Detector struct {
	client client.VisionClient
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client}
}

// Detect sends the encoded frame to the client. Rectangles are clamped to
// bounds when bounds is not empty. Entries are never dropped, so the counts
// match what the backend reported.
func (d *Detector) Detect(ctx context.Context, encoded []byte, bounds image.Rectangle) (*types.AnalysisResult, error) {
	result, err := d.client.Analyze(ctx, encoded)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &types.AnalysisResult{}
	}

	if !bounds.Empty() {
		size := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
		for i := range result.People {
			result.People[i].Rectangle = clampRectangle(result.People[i].Rectangle, size)
		}
		for i := range result.Objects {
			result.Objects[i].Rectangle = clampRectangle(result.Objects[i].Rectangle, size)
		}
	}
	for i := range result.Objects {
		result.Objects[i].Object = strings.TrimSpace(result.Objects[i].Object)
	}

	return result, nil
}

// clampRectangle ensures the rectangle lies within the frame
func clampRectangle(r types.Rectangle, frame image.Rectangle) types.Rectangle {
	c := r.Bounds().Canon().Intersect(frame)
	if c.Empty() {
		// keep a degenerate box at the nearest in-frame point
		x := clamp(r.X, frame.Min.X, frame.Max.X-1)
		y := clamp(r.Y, frame.Min.Y, frame.Max.Y-1)
		return types.Rectangle{X: x, Y: y}
	}
	return types.Rectangle{X: c.Min.X, Y: c.Min.Y, W: c.Dx(), H: c.Dy()}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package client

import (
	"context"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

// VisionClient sends an encoded image to an analysis backend and returns the detections.
type VisionClient interface {
	Analyze(ctx context.Context, image []byte) (*types.AnalysisResult, error)
}

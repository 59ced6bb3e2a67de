// Package cameraanalyzer detects people and objects in images through a
// remote vision service and draws the detected people onto the image.
//
// The interactive camera tool lives in cmd/camera-analyzer; this package is
// the library entry point for analyzing images that are already in memory or
// on disk.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//		"os"
//
//		cameraanalyzer "github.com/menta2k/camera-analyzer"
//	)
//
//	func main() {
//		analyzer, err := cameraanalyzer.NewAzure(os.Getenv("API_ENDPOINT"), os.Getenv("API_KEY"), "es")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := analyzer.ProcessImageFile(context.Background(), "photo.jpg", "photo_people.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("people: %d, objects: %s\n", len(result.People), result.JoinedLabels())
//	}
//
// The package consists of these components:
//
// 1. Clients (pkg/azure, pkg/ollama, pkg/llamacpp): send an encoded image to a backend
// 2. Detection (pkg/detection): normalizes backend answers to the image bounds
// 3. Processing (pkg/processing): encoding, validation, annotation and saving
// 4. Capture (pkg/capture): the interactive camera loop
package cameraanalyzer

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/menta2k/camera-analyzer/internal/utils"
	"github.com/menta2k/camera-analyzer/pkg/azure"
	"github.com/menta2k/camera-analyzer/pkg/client"
	"github.com/menta2k/camera-analyzer/pkg/detection"
	"github.com/menta2k/camera-analyzer/pkg/processing"
	"github.com/menta2k/camera-analyzer/pkg/types"
)

// Version of the camera analyzer library
const Version = "1.0.0"

// DefaultQuality is the JPEG quality of uploaded and saved images
const DefaultQuality = 95

// Analyzer provides a high-level interface for analysis and annotation
type Analyzer struct {
	detector  *detection.Detector
	processor *processing.Processor
	caption   string
}

// New creates an Analyzer on top of any vision client
func New(vc client.VisionClient, language string) *Analyzer {
	return &Analyzer{
		detector:  detection.NewDetector(vc),
		processor: processing.NewProcessor(),
		caption:   processing.PersonCaption(language),
	}
}

// NewAzure creates an Analyzer talking to the remote analysis service
func NewAzure(endpoint, apiKey, language string) (*Analyzer, error) {
	vc, err := azure.NewClient(endpoint, apiKey, azure.WithLanguage(language))
	if err != nil {
		return nil, err
	}
	return New(vc, language), nil
}

// LoadImage loads an image from file
func (a *Analyzer) LoadImage(path string) (image.Image, error) {
	return a.processor.LoadImage(path)
}

// SaveImage saves an image to file, the format follows the extension
func (a *Analyzer) SaveImage(img image.Image, path string) error {
	return a.processor.SaveImage(img, path, formatFromPath(path), DefaultQuality)
}

// AnalyzeImage encodes img in memory and sends it for analysis
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image) (*types.AnalysisResult, error) {
	if err := a.processor.ValidateFrame(img); err != nil {
		return nil, err
	}
	data, err := a.processor.EncodeFrame(img, "jpg", DefaultQuality)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return a.detector.Detect(ctx, data, img.Bounds())
}

// Annotate draws a box and caption for every detected person on a copy of img
func (a *Analyzer) Annotate(img image.Image, result *types.AnalysisResult) image.Image {
	return a.processor.Annotate(img, result.People, a.caption)
}

// ProcessImageFile loads, analyzes and annotates inputPath and writes the
// annotated image to outputPath
func (a *Analyzer) ProcessImageFile(ctx context.Context, inputPath, outputPath string) (*types.AnalysisResult, error) {
	if !utils.FileExists(inputPath) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}
	img, err := a.LoadImage(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	result, err := a.AnalyzeImage(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if err := a.SaveImage(a.Annotate(img, result), outputPath); err != nil {
		return result, fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	return result, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

func formatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "webp":
		return ext
	default:
		return "jpg"
	}
}

package types

import (
	"fmt"
	"image"
	"strings"
)

// Rectangle is a bounding box in pixel coordinates of the analyzed frame
type Rectangle struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Bounds returns the rectangle as an image.Rectangle
func (r Rectangle) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Rectangle) String() string {
	return fmt.Sprintf("{x: %d, y: %d, w: %d, h: %d}", r.X, r.Y, r.W, r.H)
}

// Person is a detected person
type Person struct {
	Rectangle  Rectangle `json:"rectangle"`
	Confidence float64   `json:"confidence,omitempty"`
}

// Object is a detected generic object with its label
type Object struct {
	Rectangle  Rectangle `json:"rectangle"`
	Object     string    `json:"object"`
	Confidence float64   `json:"confidence,omitempty"`
}

// Metadata describes the image as seen by the service
type Metadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// AnalysisResult is the parsed response of a vision backend for one frame
type AnalysisResult struct {
	People       []Person  `json:"people"`
	Objects      []Object  `json:"objects"`
	RequestID    string    `json:"requestId,omitempty"`
	ModelVersion string    `json:"modelVersion,omitempty"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

// ObjectLabels returns the label of every detected object, in response order
func (r *AnalysisResult) ObjectLabels() []string {
	labels := make([]string, 0, len(r.Objects))
	for _, o := range r.Objects {
		labels = append(labels, o.Object)
	}
	return labels
}

// JoinedLabels returns the object labels joined with ", "
func (r *AnalysisResult) JoinedLabels() string {
	return strings.Join(r.ObjectLabels(), ", ")
}

// Package capture runs the interactive camera loop: every frame is shown in a
// preview window, the space key sends the current frame to a vision backend
// and shows the detected people in a results window, the escape key quits.
package capture

import (
	"errors"
	"image"
	"time"
)

// Key codes returned by Display.WaitKey
const (
	KeyNone   = -1
	KeyEscape = 27
	KeySpace  = 32
)

// Window titles
const (
	PreviewTitle = "People detection - press SPACE to capture"
	ResultsTitle = "Results"
)

// ErrDevice wraps camera and display failures. They end the loop.
var ErrDevice = errors.New("device error")

// Camera yields frames on demand
type Camera interface {
	// Read returns the next frame. The frame belongs to the caller.
	Read() (image.Image, error)
	Close() error
}

// Display renders images and reports key presses
type Display interface {
	Show(img image.Image) error
	// WaitKey waits up to timeout for a key press and returns its code, or KeyNone.
	WaitKey(timeout time.Duration) int
	Close() error
}

// WindowOpener opens a new Display with the given title
type WindowOpener func(title string) (Display, error)

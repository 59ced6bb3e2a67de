package device

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Window is a HighGUI window
type Window struct {
	w *gocv.Window
}

// NewWindow opens a window with the given title
func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

// Show renders img in the window
func (w *Window) Show(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	w.w.IMShow(mat)
	return nil
}

// WaitKey pumps window events for up to timeout and returns the pressed key,
// or -1 when none was pressed
func (w *Window) WaitKey(timeout time.Duration) int {
	return normalizeKey(w.w.WaitKey(waitMillis(timeout)))
}

// Close destroys the window
func (w *Window) Close() error {
	return w.w.Close()
}

// waitMillis converts timeout for HighGUI, where 0 would block forever
func waitMillis(timeout time.Duration) int {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return ms
}

// normalizeKey drops modifier bits some HighGUI backends add to key codes
func normalizeKey(key int) int {
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

// Package device provides the OpenCV-backed camera source and windows used by
// the capture loop.
package device

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the camera delivers no frame
var ErrNoFrame = errors.New("camera returned no frame")

// Camera reads frames from a local video device
type Camera struct {
	id  int
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCamera opens the video device with the given index
func OpenCamera(id int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("camera %d is not available", id)
	}
	return &Camera{id: id, vc: vc, mat: gocv.NewMat()}, nil
}

// Read grabs the next frame and converts it to an RGBA image
func (c *Camera) Read() (image.Image, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, fmt.Errorf("camera %d: %w", c.id, ErrNoFrame)
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("camera %d: convert frame: %w", c.id, err)
	}
	return img, nil
}

// Close releases the device and the frame buffer
func (c *Camera) Close() error {
	matErr := c.mat.Close()
	if err := c.vc.Close(); err != nil {
		return err
	}
	return matErr
}

package processing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

// Limits accepted by the analysis service
const (
	MinFrameSize = 50
	MaxFrameSize = 16000
)

const (
	// CaptionOffset is how far above the box top edge the caption baseline sits
	CaptionOffset = 10
	// BoxStroke is the box line width in pixels
	BoxStroke = 2
)

// ErrFrameTooSmall is returned for frames below MinFrameSize on either side
var ErrFrameTooSmall = errors.New("frame too small")

// BoxColor is used for person boxes and captions
var BoxColor = color.NRGBA{0, 255, 0, 255}

// Processor handles frame encoding, annotation and saving
type Processor struct{}

// NewProcessor creates a new frame processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateFrame checks the frame size against the service limits
func (p *Processor) ValidateFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() < MinFrameSize || b.Dy() < MinFrameSize {
		return fmt.Errorf("%w: %dx%d (minimum: %d)", ErrFrameTooSmall, b.Dx(), b.Dy(), MinFrameSize)
	}
	if b.Dx() > MaxFrameSize || b.Dy() > MaxFrameSize {
		return fmt.Errorf("frame too large: %dx%d (maximum: %d)", b.Dx(), b.Dy(), MaxFrameSize)
	}
	return nil
}

// StageFrame writes the frame as JPEG to path and reads the file back
func (p *Processor) StageFrame(img image.Image, path string, quality int) ([]byte, error) {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// EncodeFrame encodes the frame in memory as jpg or png
func (p *Processor) EncodeFrame(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(format) {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	default: // jpg
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if img, err := webp.Decode(f); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := p.encodeWebP(f, img, quality); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

func (p *Processor) encodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
}

// Annotate returns a copy of img with a box and caption drawn for every person.
// The caption baseline is placed CaptionOffset pixels above the box.
func (p *Processor) Annotate(img image.Image, people []types.Person, caption string) *image.NRGBA {
	out := imaging.Clone(img)

	for _, person := range people {
		r := person.Rectangle.Bounds()
		drawBox(out, r, BoxColor, BoxStroke)
		if caption != "" {
			drawCaption(out, r.Min.X, r.Min.Y-CaptionOffset, caption, BoxColor)
		}
	}
	return out
}

// PersonCaption returns the caption drawn next to a person box for the label language
func PersonCaption(language string) string {
	switch strings.ToLower(language) {
	case "es":
		return "Persona"
	case "pt":
		return "Pessoa"
	default:
		return "Person"
	}
}

func drawCaption(img *image.NRGBA, x, y int, text string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

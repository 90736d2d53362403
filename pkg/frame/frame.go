// Package frame holds the immutable RGBA pixel grid captured once per tick.
package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
)

// ErrBadBuffer is returned when a pixel buffer does not match its dimensions.
var ErrBadBuffer = errors.New("frame: pixel buffer does not match dimensions")

// Frame is a rectangular RGBA pixel grid. Pix is row-major with a stride
// of 4*Width and must be treated as read-only once the frame is built.
type Frame struct {
	Width    int
	Height   int
	Pix      []byte
	Captured time.Time
}

// New wraps an RGBA buffer without copying it.
func New(width, height int, pix []byte) (Frame, error) {
	if width <= 0 || height <= 0 {
		return Frame{}, fmt.Errorf("%w: %dx%d", ErrBadBuffer, width, height)
	}
	if len(pix) != width*height*4 {
		return Frame{}, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrBadBuffer, width, height, width*height*4, len(pix))
	}
	return Frame{Width: width, Height: height, Pix: pix, Captured: time.Now()}, nil
}

// Uniform returns a frame filled with a single color.
func Uniform(width, height int, c color.RGBA) Frame {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
	return Frame{Width: width, Height: height, Pix: pix, Captured: time.Now()}
}

// FromImage converts any image into a frame, copying its pixels.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return Frame{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix, Captured: time.Now()}
}

// Empty reports whether the frame carries no pixels.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) < f.Width*f.Height*4
}

// Bounds returns the frame rectangle anchored at the origin.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Image returns an image.RGBA view over the frame's pixels. The view
// shares memory with the frame and must not be written to.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{Pix: f.Pix, Stride: f.Width * 4, Rect: f.Bounds()}
}

// Set writes a pixel. Only for building frames before they are handed off.
func (f Frame) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 4
	f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = c.R, c.G, c.B, c.A
}

// Fill paints a rectangle, clipped to the frame.
func (f Frame) Fill(r image.Rectangle, c color.RGBA) {
	r = r.Intersect(f.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.Set(x, y, c)
		}
	}
}

// Crop copies the pixels inside r (clipped to the frame) into a new frame.
func (f Frame) Crop(r image.Rectangle) Frame {
	r = r.Intersect(f.Bounds())
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return Frame{Captured: f.Captured}
	}
	pix := make([]byte, w*h*4)
	srcStride := f.Width * 4
	for row := 0; row < h; row++ {
		src := (r.Min.Y+row)*srcStride + r.Min.X*4
		copy(pix[row*w*4:(row+1)*w*4], f.Pix[src:src+w*4])
	}
	return Frame{Width: w, Height: h, Pix: pix, Captured: f.Captured}
}

// Scale resamples the frame to width x height using Catmull-Rom filtering.
func (f Frame) Scale(width, height int) Frame {
	if width == f.Width && height == f.Height {
		return f
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), f.Image(), f.Bounds(), draw.Src, nil)
	return Frame{Width: width, Height: height, Pix: dst.Pix, Captured: f.Captured}
}

package camera

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wayfinder/pkg/frame"
)

var (
	ErrUnavailable = errors.New("camera: device unavailable")
	ErrNoFrame     = errors.New("camera: no frame")
	ErrClosed      = errors.New("camera: source closed")
	ErrExhausted   = errors.New("camera: no more frames")
)

// Source produces RGBA frames.
type Source interface {
	Read() (frame.Frame, error)
	Close() error
}

// Capture reads frames from an OpenCV capture device.
type Capture struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	bgr    gocv.Mat
	rgba   gocv.Mat
	closed bool
}

// Open starts capturing from cfg.Device. Any failure to open the device is
// reported as ErrUnavailable.
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %v", errs)
	}

	var device any = cfg.Device
	if i, ok := cfg.DeviceIndex(); ok {
		device = i
	}

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Capture{
		cap:  vc,
		bgr:  gocv.NewMat(),
		rgba: gocv.NewMat(),
	}, nil
}

// Read grabs the next frame.
func (c *Capture) Read() (frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return frame.Frame{}, ErrClosed
	}
	if !c.cap.Read(&c.bgr) || c.bgr.Empty() {
		return frame.Frame{}, ErrNoFrame
	}
	return matToFrame(c.bgr, &c.rgba)
}

// Close releases the device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.bgr.Close()
	c.rgba.Close()
	return c.cap.Close()
}

// DirSource replays the PNG and JPEG files of a directory in name order.
type DirSource struct {
	mu     sync.Mutex
	files  []string
	next   int
	loop   bool
	closed bool
}

// NewDirSource lists the images in dir. An empty or missing directory is
// ErrUnavailable.
func NewDirSource(dir string, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrUnavailable, dir)
	}
	slices.Sort(files)

	return &DirSource{files: files, loop: loop}, nil
}

// Len returns the number of images.
func (d *DirSource) Len() int {
	return len(d.files)
}

// Read decodes the next image.
func (d *DirSource) Read() (frame.Frame, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return frame.Frame{}, ErrClosed
	}
	if d.next >= len(d.files) {
		if !d.loop {
			d.mu.Unlock()
			return frame.Frame{}, ErrExhausted
		}
		d.next = 0
	}
	path := d.files[d.next]
	d.next++
	d.mu.Unlock()

	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()
	if bgr.Empty() {
		return frame.Frame{}, fmt.Errorf("%w: cannot decode %s", ErrNoFrame, path)
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	return matToFrame(bgr, &rgba)
}

// Close stops the replay.
func (d *DirSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// OpenSource resolves cfg.Device to a directory replay when it names a directory,
// and a capture device otherwise.
func OpenSource(cfg Config) (Source, error) {
	if info, err := os.Stat(cfg.Device); err == nil && info.IsDir() {
		return NewDirSource(cfg.Device, cfg.Loop)
	}
	return Open(cfg)
}

// Switch is a Source whose underlying source can be replaced while frames
// are being read, e.g. after a configuration change.
type Switch struct {
	mu  sync.Mutex
	src Source
}

// NewSwitch wraps src.
func NewSwitch(src Source) *Switch {
	return &Switch{src: src}
}

// Replace installs src and closes the previous source. It waits for an
// in-flight Read, so readers never observe the old source closed.
func (s *Switch) Replace(src Source) error {
	s.mu.Lock()
	old := s.src
	s.src = src
	s.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// Read reads from the current source, holding the switch for the duration
// of the read.
func (s *Switch) Read() (frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src == nil {
		return frame.Frame{}, ErrUnavailable
	}
	return s.src.Read()
}

// Close closes the current source.
func (s *Switch) Close() error {
	return s.Replace(nil)
}

func matToFrame(bgr gocv.Mat, rgba *gocv.Mat) (frame.Frame, error) {
	gocv.CvtColor(bgr, rgba, gocv.ColorBGRToRGBA)
	f, err := frame.New(rgba.Cols(), rgba.Rows(), rgba.ToBytes())
	if err != nil {
		return frame.Frame{}, err
	}
	f.Captured = time.Now()
	return f, nil
}

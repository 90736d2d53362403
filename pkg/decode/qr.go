package decode

import (
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// QRDecoder reads QR symbols with OpenCV's QRCodeDetector.
type QRDecoder struct {
	detector    gocv.QRCodeDetector
	tryInverted bool
	closed      bool
	mu          sync.Mutex // Protects the native detector
}

// NewQRDecoder creates a QR decoder. When tryInverted is set, a miss is
// retried on the inverted image so light-on-dark symbols also decode.
func NewQRDecoder(tryInverted bool) *QRDecoder {
	return &QRDecoder{
		detector:    gocv.NewQRCodeDetector(),
		tryInverted: tryInverted,
	}
}

// Name implements Decoder.
func (d *QRDecoder) Name() string { return "qr" }

// Decode implements Decoder.
func (d *QRDecoder) Decode(pixels []byte, width, height int) (string, bool, error) {
	if err := checkBuffer(pixels, width, height); err != nil {
		return "", false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", false, ErrClosed
	}

	rgba, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, pixels)
	if err != nil {
		return "", false, WrapError(d.Name(), err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	if text := d.detect(bgr); text != "" {
		return text, true, nil
	}
	if !d.tryInverted {
		return "", false, nil
	}

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(bgr, &inverted)
	if text := d.detect(inverted); text != "" {
		return text, true, nil
	}
	return "", false, nil
}

func (d *QRDecoder) detect(img gocv.Mat) string {
	points := gocv.NewMat()
	defer points.Close()
	straight := gocv.NewMat()
	defer straight.Close()
	return strings.TrimSpace(d.detector.DetectAndDecode(img, &points, &straight))
}

// Close implements Decoder.
func (d *QRDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.detector.Close()
}

// Verify QRDecoder implements Decoder at compile time.
var _ Decoder = (*QRDecoder)(nil)

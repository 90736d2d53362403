package decode

import (
	"fmt"
	"image"
	"regexp"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// CodeChars is the character set printed on marker labels.
const CodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// DefaultCodePattern matches marker codes such as R_ENTR or QR1.
var DefaultCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,31}$`)

// OCRDecoder reads the human-readable code printed under a marker using
// Tesseract. Only text matching the code pattern counts as a payload.
type OCRDecoder struct {
	client  *gosseract.Client
	pattern *regexp.Regexp
	closed  bool
	mu      sync.Mutex
}

// NewOCRDecoder creates an OCR decoder restricted to CodeChars. A nil
// pattern selects DefaultCodePattern.
func NewOCRDecoder(pattern *regexp.Regexp) (*OCRDecoder, error) {
	if pattern == nil {
		pattern = DefaultCodePattern
	}
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("decode: set OCR language: %w", err)
	}
	// Codes are not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	if err := client.SetWhitelist(CodeChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("decode: set OCR whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("decode: set OCR page mode: %w", err)
	}

	return &OCRDecoder{client: client, pattern: pattern}, nil
}

// Name implements Decoder.
func (d *OCRDecoder) Name() string { return "ocr" }

// Decode implements Decoder.
func (d *OCRDecoder) Decode(pixels []byte, width, height int) (string, bool, error) {
	if err := checkBuffer(pixels, width, height); err != nil {
		return "", false, err
	}

	png, err := binarizeToPNG(pixels, width, height)
	if err != nil {
		return "", false, WrapError(d.Name(), err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", false, ErrClosed
	}

	if err := d.client.SetImageFromBytes(png); err != nil {
		return "", false, WrapError(d.Name(), err)
	}
	text, err := d.client.Text()
	if err != nil {
		return "", false, WrapError(d.Name(), err)
	}

	text = strings.ToUpper(strings.Join(strings.Fields(text), ""))
	if !d.pattern.MatchString(text) {
		return "", false, nil
	}
	return text, true, nil
}

// Close implements Decoder.
func (d *OCRDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.client.Close()
}

// binarizeToPNG converts RGBA pixels into an Otsu-thresholded PNG with dark
// text on a light background, which is what Tesseract expects.
func binarizeToPNG(pixels []byte, width, height int) ([]byte, error) {
	rgba, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, pixels)
	if err != nil {
		return nil, err
	}
	defer rgba.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)

	// Upscale small labels (target ~150px minimum side)
	if minDim := min(width, height); minDim < 150 {
		scale := 150.0 / float64(minDim)
		gocv.Resize(gray, &gray, image.Point{}, scale, scale, gocv.InterpolationCubic)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	if white := gocv.CountNonZero(binary); white*2 < binary.Rows()*binary.Cols() {
		gocv.BitwiseNot(binary, &binary)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// Verify OCRDecoder implements Decoder at compile time.
var _ Decoder = (*OCRDecoder)(nil)

package extraction

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes      = 100 * 1024 // cap for extracted PDF text
	minRasterHeight   = 800
	ocrRasterHeight   = 1200
	defaultOCRTimeout = 60 * time.Second
)

// TextAcquirer converts an uploaded document into raw text: direct extraction
// for PDFs, transcode-then-OCR for images.
type TextAcquirer struct {
	ocr        Recognizer
	ocrTimeout time.Duration
}

// NewTextAcquirer creates an acquirer backed by the given OCR engine.
// A non-positive timeout falls back to the default.
func NewTextAcquirer(ocr Recognizer, ocrTimeout time.Duration) *TextAcquirer {
	if ocrTimeout <= 0 {
		ocrTimeout = defaultOCRTimeout
	}
	return &TextAcquirer{ocr: ocr, ocrTimeout: ocrTimeout}
}

// AcquireText extracts raw text from doc. Empty text is a valid result.
// PDF parse failures and OCR failures are fatal; image transcoding failures
// fall back to OCR on the original bytes.
func (a *TextAcquirer) AcquireText(ctx context.Context, doc *RawDocument) (string, error) {
	if doc.IsPDF() {
		text, err := extractPDFText(doc.Data)
		if err != nil {
			return "", &Error{
				Code:    ErrPDFUnreadable,
				Message: "failed to extract text from PDF",
				Stage:   "acquire",
				Cause:   err,
			}
		}
		return text, nil
	}

	raster, err := a.transcode(doc)
	if err != nil {
		// Best effort: hand the original bytes to OCR rather than failing.
		log.Printf("[acquire] transcode failed, using original bytes: %v", err)
		raster = doc.Data
	}

	ocrCtx, cancel := context.WithTimeout(ctx, a.ocrTimeout)
	defer cancel()

	text, err := a.ocr.Recognize(ocrCtx, raster)
	if err != nil {
		return "", &Error{
			Code:    ErrOCRFailed,
			Message: "OCR recognition failed",
			Stage:   "acquire",
			Cause:   err,
		}
	}
	return text, nil
}

// transcode normalizes an uploaded image to a grayscale PNG sized for OCR.
// HEIC goes through a dedicated decoder; everything else through the generic
// raster pipeline.
func (a *TextAcquirer) transcode(doc *RawDocument) ([]byte, error) {
	decoded, err := decodeRaster(doc)
	if err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(decoded)
	if gray.Bounds().Dy() < minRasterHeight {
		gray = imaging.Resize(gray, 0, ocrRasterHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRaster(doc *RawDocument) (image.Image, error) {
	if doc.IsHEIC() {
		img, err := goheif.Decode(bytes.NewReader(doc.Data))
		if err != nil {
			return nil, fmt.Errorf("decode HEIC: %w", err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// extractPDFText pulls the embedded text layer out of a PDF. The pdf library
// panics on some malformed inputs, so the call is wrapped in recover().
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during PDF text extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF reader: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract plain text: %w", err)
	}

	textBytes, err := io.ReadAll(io.LimitReader(plainText, int64(maxTextBytes)))
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}

	return string(textBytes), nil
}

package extraction

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns raster image bytes into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractRecognizer runs OCR through a local Tesseract engine.
// A fresh client is created per call: gosseract clients are not safe for
// concurrent use, and invocations are request-scoped anyway.
type TesseractRecognizer struct {
	languages []string
}

// NewTesseractRecognizer creates a recognizer for the given languages
// (defaults to English).
func NewTesseractRecognizer(languages ...string) *TesseractRecognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractRecognizer{languages: languages}
}

// Recognize runs Tesseract over image and returns the recognized text.
// The engine call itself cannot be interrupted, so cancellation abandons the
// worker goroutine and returns the context error.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	type ocrResult struct {
		text string
		err  error
	}
	ch := make(chan ocrResult, 1)

	go func() {
		client := gosseract.NewClient()
		defer client.Close()

		if err := client.SetLanguage(r.languages...); err != nil {
			ch <- ocrResult{err: fmt.Errorf("set OCR language: %w", err)}
			return
		}
		if err := client.SetImageFromBytes(image); err != nil {
			ch <- ocrResult{err: fmt.Errorf("load OCR image: %w", err)}
			return
		}
		text, err := client.Text()
		if err != nil {
			ch <- ocrResult{err: fmt.Errorf("recognize text: %w", err)}
			return
		}
		ch <- ocrResult{text: text}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.text, res.err
	}
}

// Package ocr recovers text from raster images via an external OCR engine.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultLanguage is the tesseract language code used when none is given.
const DefaultLanguage = "eng"

// Engine recognizes text in a single raster image. Implementations must
// honor ctx cancellation and deadlines.
type Engine interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

// Tesseract runs the tesseract binary as a subprocess, the same way the
// usual Python bindings do. The image is piped through stdin and the
// recognized text read from stdout.
type Tesseract struct {
	// Binary is the tesseract executable. Defaults to "tesseract" on PATH,
	// overridable via PDF_DIGEST_TESSERACT.
	Binary string
}

// NewTesseract creates a subprocess-backed OCR engine.
func NewTesseract() *Tesseract {
	binary := os.Getenv("PDF_DIGEST_TESSERACT")
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{Binary: binary}
}

// Recognize runs OCR on one image and returns the recognized text with
// surrounding whitespace trimmed.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	// "stdin" and "stdout" are tesseract's markers for piped I/O.
	cmd := exec.CommandContext(ctx, t.Binary, "stdin", "stdout", "-l", lang)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("tesseract failed: %w: %s", err, detail)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

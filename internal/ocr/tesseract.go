package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	// Register decoders for the image formats thumbnails and screenshots
	// arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// DefaultTimeout bounds a single tesseract invocation.
	DefaultTimeout = 30 * time.Second

	// maxStderrBytes is the tail of stderr kept for diagnostics.
	maxStderrBytes = 8 * 1024
)

// DecodeError indicates the image bytes could not be decoded at all.
// Distinct from engine failures so per-frame logs can tell a corrupt
// download from a broken OCR installation.
type DecodeError struct {
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable image: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Engine extracts plain text from raw image bytes.
type Engine interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Tesseract runs the tesseract CLI as a subprocess.
type Tesseract struct {
	// bin is the resolved tesseract binary path.
	bin string

	// timeout bounds each invocation.
	timeout time.Duration

	// logger is used for per-invocation diagnostics.
	logger *slog.Logger
}

// TesseractOption configures a Tesseract engine.
type TesseractOption func(*Tesseract)

// WithBinary sets an explicit tesseract binary path, skipping PATH lookup.
func WithBinary(path string) TesseractOption {
	return func(t *Tesseract) {
		if path != "" {
			t.bin = path
		}
	}
}

// WithOCRTimeout sets the per-invocation timeout.
func WithOCRTimeout(d time.Duration) TesseractOption {
	return func(t *Tesseract) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithOCRLogger sets a custom logger.
func WithOCRLogger(logger *slog.Logger) TesseractOption {
	return func(t *Tesseract) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTesseract creates a Tesseract engine, resolving the binary on PATH
// unless WithBinary overrides it.
func NewTesseract(opts ...TesseractOption) (*Tesseract, error) {
	t := &Tesseract{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.bin == "" {
		bin, err := exec.LookPath("tesseract")
		if err != nil {
			return nil, fmt.Errorf("cannot locate tesseract: %w", err)
		}
		t.bin = bin
	}

	return t, nil
}

// ExtractText runs OCR over the image bytes.
// Returns *DecodeError for undecodable payloads and a plain error for
// engine failures; an image with no readable text yields "".
func (t *Tesseract) ExtractText(ctx context.Context, img []byte) (string, error) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(img)); err != nil {
		return "", &DecodeError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()

	// "stdin stdout" makes tesseract read the image from stdin and write
	// plain text to stdout.
	cmd := exec.CommandContext(ctx, t.bin, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(img)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w (stderr: %s)", err, truncate(stderr.String(), 512))
	}

	t.logger.Debug("ocr complete",
		"bytes_in", len(img),
		"chars_out", stdout.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return stdout.String(), nil
}

// limitedWriter keeps at most limit bytes, discarding the rest.
type limitedWriter struct {
	w     io.Writer
	limit int
	seen  int
}

// Write implements io.Writer.
func (l *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if l.seen >= l.limit {
		return n, nil
	}
	if l.seen+n > l.limit {
		p = p[:l.limit-l.seen]
	}
	l.seen += len(p)
	if _, err := l.w.Write(p); err != nil {
		return 0, err
	}
	return n, nil
}

// truncate shortens s to at most n bytes for log output.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

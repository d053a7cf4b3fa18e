package scan

import (
	"context"
	"errors"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// ErrNoPlayer is returned by VideoSource.LocatePlayer when neither the
// expected player control element nor a bare video element is present.
// The controller treats it as "skip the video phase", not as a failure.
var ErrNoPlayer = errors.New("no video player element located")

// CatalogProvider lists candidate frames from rendered viewer markup.
// Implemented by the catalog package; faked in tests.
type CatalogProvider interface {
	// Thumbnails returns thumbnail frame descriptors in gallery order.
	Thumbnails(markup string) []model.FrameDescriptor

	// NavigationPoints returns video seek points sorted by ascending
	// offset and deduplicated.
	NavigationPoints(markup string) []model.FrameDescriptor
}

// FrameFetcher downloads a pre-rendered thumbnail image by its locator.
type FrameFetcher interface {
	FetchByLocator(ctx context.Context, locator string) ([]byte, error)
}

// VideoSource drives the single shared video player. Seeks mutate player
// state, so callers must not interleave SeekAndCapture calls.
type VideoSource interface {
	// LocatePlayer checks that a seekable player is present.
	// Returns ErrNoPlayer when the video phase cannot run at all.
	LocatePlayer(ctx context.Context) error

	// SeekAndCapture seeks to the offset, waits for the frame to settle,
	// and returns a screenshot of the video element.
	SeekAndCapture(ctx context.Context, offsetSeconds int) ([]byte, error)
}

// TextExtractor runs OCR over raw image bytes. Unreadable-but-decodable
// frames yield an empty string, not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// CodeRecognizer extracts code candidates from OCR text.
// Satisfied by *recognize.Recognizer.
type CodeRecognizer interface {
	Recognize(text string) []string
}

// Archiver persists raw frames and code-bearing images. Archival is an
// opportunistic side effect: a nil Archiver disables it and implementations'
// errors are logged, never propagated.
type Archiver interface {
	// SaveFrame stores a raw frame image under the phase's directory,
	// named by its timestamp label.
	SaveFrame(phase model.Phase, timestampLabel string, image []byte) (string, error)

	// SaveCodeImage stores the image under a stable, collision-resistant
	// key derived from the code and timestamp label. It returns the
	// stored reference (typically a file path).
	SaveCodeImage(code, timestampLabel string, image []byte) (string, error)
}

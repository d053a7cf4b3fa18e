// Package archive persists debug artifacts and code-bearing frames on disk.
//
// Archival is an opportunistic side effect of an extraction run: the page
// markup, fetched thumbnails, captured frames, and one image per recognized
// (code, timestamp) pair. Nothing in the extraction core depends on it; a
// nil store disables it entirely and write failures are logged by callers,
// never propagated.
package archive

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"golang.org/x/crypto/sha3"
)

// Directory names inside the store root.
const (
	thumbnailsDir  = "thumbnails"
	videoFramesDir = "video_frames"
	codesDir       = "codes"
	diagnosticsDir = "diagnostics"
	pageFile       = "viewer_page.html"
)

// pngMagic is the PNG signature used to sniff the image format.
var pngMagic = []byte{0x89, 'P', 'N', 'G'}

// Store writes artifacts under a per-run root directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// SavePageHTML stores the rendered viewer markup.
func (s *Store) SavePageHTML(markup string) (string, error) {
	path := filepath.Join(s.root, pageFile)
	if err := os.WriteFile(path, []byte(markup), 0600); err != nil {
		return "", fmt.Errorf("save page markup: %w", err)
	}
	return path, nil
}

// SaveFrame stores a raw frame image under the phase's directory, named by
// its timestamp label.
func (s *Store) SaveFrame(phase model.Phase, timestampLabel string, image []byte) (string, error) {
	dir := thumbnailsDir
	if phase == model.PhaseVideo {
		dir = videoFramesDir
	}

	name := fmt.Sprintf("frame_%s%s", sanitize(timestampLabel), sniffExt(image))
	return s.write(dir, name, image)
}

// SaveCodeImage stores the image of a recognized code under a stable,
// collision-resistant key: the code, the timestamp, and a short digest of
// the image bytes. Two different frames producing the same (code,
// timestamp) pair therefore never overwrite each other.
func (s *Store) SaveCodeImage(code, timestampLabel string, image []byte) (string, error) {
	digest := sha3.Sum256(image)
	name := fmt.Sprintf("code_%s_%s_%s%s",
		sanitize(code),
		sanitize(timestampLabel),
		hex.EncodeToString(digest[:4]),
		sniffExt(image),
	)
	return s.write(codesDir, name, image)
}

// SaveDiagnostic stores a screenshot of an unexpected page state.
func (s *Store) SaveDiagnostic(name string, image []byte) (string, error) {
	return s.write(diagnosticsDir, sanitize(name)+sniffExt(image), image)
}

// write stores data under root/dir/name, creating the directory as needed.
func (s *Store) write(dir, name string, data []byte) (string, error) {
	full := filepath.Join(s.root, dir)
	if err := os.MkdirAll(full, 0750); err != nil {
		return "", fmt.Errorf("create %s dir: %w", dir, err)
	}

	path := filepath.Join(full, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// sanitize makes a label safe for use in a file name.
func sanitize(label string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		"..", "_",
	)
	out := replacer.Replace(strings.TrimSpace(label))
	if out == "" {
		return "unknown"
	}
	return out
}

// sniffExt guesses the file extension from the image bytes.
// Thumbnails arrive as JPEG, element screenshots as PNG.
func sniffExt(image []byte) string {
	if bytes.HasPrefix(image, pngMagic) {
		return ".png"
	}
	return ".jpg"
}

package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bennyli1995/clicker-scrape/internal/scan"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Default viewer settings, matching the stock Panopto-style viewer.
const (
	// DefaultStripSelector locates the thumbnail strip container.
	DefaultStripSelector = ".thumbnail-strip"

	// DefaultPlayerSelector locates the player control element.
	DefaultPlayerSelector = ".panopto-player"

	// videoSelector is the fallback raw element used when the player
	// control is absent, and the element screenshots are taken from.
	videoSelector = "video"

	// DefaultNavigationTimeout bounds page navigation.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultWaitTimeout bounds element waits (strip, player).
	DefaultWaitTimeout = 20 * time.Second

	// DefaultPageSettle is the extra wait after the strip appears, for
	// lazily-loaded thumbnails to populate their data attributes.
	DefaultPageSettle = 5 * time.Second

	// DefaultFrameSettle is the wait between a seek and its capture.
	// 1.5s is the observed minimum for the frame to stabilize.
	DefaultFrameSettle = 1500 * time.Millisecond

	// DefaultViewportWidth and DefaultViewportHeight size the browser
	// window; slides need enough pixels for OCR to read the code.
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
)

// CaptureError is a per-frame seek/screenshot failure.
type CaptureError struct {
	// OffsetSeconds is the seek position that failed.
	OffsetSeconds int

	// Err is the underlying browser error.
	Err error
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture at %ds: %v", e.OffsetSeconds, e.Err)
}

// Unwrap returns the underlying error.
func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Config holds viewer session settings.
type Config struct {
	// Headless runs Chrome without a visible window.
	Headless bool

	// StripSelector locates the thumbnail strip container.
	StripSelector string

	// PlayerSelector locates the player control element.
	PlayerSelector string

	// NavigationTimeout bounds page navigation.
	NavigationTimeout time.Duration

	// WaitTimeout bounds element waits.
	WaitTimeout time.Duration

	// PageSettle is the extra wait after the strip renders.
	PageSettle time.Duration

	// FrameSettle is the wait between seek and capture.
	FrameSettle time.Duration

	// ViewportWidth and ViewportHeight size the browser window.
	ViewportWidth  int
	ViewportHeight int
}

// DefaultConfig returns viewer settings for the stock viewer markup.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		StripSelector:     DefaultStripSelector,
		PlayerSelector:    DefaultPlayerSelector,
		NavigationTimeout: DefaultNavigationTimeout,
		WaitTimeout:       DefaultWaitTimeout,
		PageSettle:        DefaultPageSettle,
		FrameSettle:       DefaultFrameSettle,
		ViewportWidth:     DefaultViewportWidth,
		ViewportHeight:    DefaultViewportHeight,
	}
}

// Diagnostics persists screenshots of unexpected page states.
// Implemented by the archive package; nil disables it.
type Diagnostics interface {
	SaveDiagnostic(name string, image []byte) (string, error)
}

// Viewer is a rod-backed browser session over one lecture viewer page.
// It satisfies the scan package's VideoSource capability and supplies the
// rendered markup for the catalog.
type Viewer struct {
	cfg      Config
	logger   *slog.Logger
	diag     Diagnostics
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithViewerLogger sets a custom logger.
func WithViewerLogger(logger *slog.Logger) ViewerOption {
	return func(v *Viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithDiagnostics sets the sink for diagnostic screenshots.
func WithDiagnostics(diag Diagnostics) ViewerOption {
	return func(v *Viewer) {
		v.diag = diag
	}
}

// NewViewer creates a Viewer with the given configuration.
// Call Open before any other method.
func NewViewer(cfg Config, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Open launches the browser and creates the viewer page.
func (v *Viewer) Open(ctx context.Context) error {
	v.launcher = launcher.New().Headless(v.cfg.Headless)
	controlURL, err := v.launcher.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	v.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  v.cfg.ViewportWidth,
		Height: v.cfg.ViewportHeight,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	v.page = page

	v.logger.Debug("browser session opened", "headless", v.cfg.Headless)
	return nil
}

// Navigate loads the viewer URL and waits for the thumbnail strip.
// A missing strip is logged (with a diagnostic screenshot) but not fatal:
// the page may still expose a usable video element.
func (v *Viewer) Navigate(ctx context.Context, url string) error {
	v.logger.Info("navigating to viewer", "url", url)

	if err := v.page.Context(ctx).Timeout(v.cfg.NavigationTimeout).Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := v.page.Context(ctx).Timeout(v.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait for page load: %w", err)
	}

	if _, err := v.page.Context(ctx).Timeout(v.cfg.WaitTimeout).Element(v.cfg.StripSelector); err != nil {
		v.logger.Warn("thumbnail strip not found",
			"selector", v.cfg.StripSelector,
			"error", err,
		)
		v.saveDiagnostic(ctx, "page_load")
	} else {
		v.logger.Debug("thumbnail strip loaded", "selector", v.cfg.StripSelector)
	}

	// Lazily-loaded thumbnails fill in their data attributes after the
	// strip appears.
	sleepCtx(ctx, v.cfg.PageSettle)
	return nil
}

// HTML returns the current page markup.
func (v *Viewer) HTML(ctx context.Context) (string, error) {
	markup, err := v.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("read page markup: %w", err)
	}
	return markup, nil
}

// LocatePlayer checks for the player control element, falling back to a
// bare video element. Returns scan.ErrNoPlayer when neither exists.
func (v *Viewer) LocatePlayer(ctx context.Context) error {
	if _, err := v.page.Context(ctx).Timeout(v.cfg.WaitTimeout).Element(v.cfg.PlayerSelector); err == nil {
		v.logger.Debug("video player found", "selector", v.cfg.PlayerSelector)
		return nil
	}

	v.logger.Warn("player control not found, trying bare video element",
		"selector", v.cfg.PlayerSelector,
	)
	v.saveDiagnostic(ctx, "video_player_not_found")

	if _, err := v.page.Context(ctx).Timeout(v.cfg.WaitTimeout).Element(videoSelector); err == nil {
		v.logger.Debug("bare video element found")
		return nil
	}

	return scan.ErrNoPlayer
}

// SeekAndCapture seeks the video to the offset, waits for the frame to
// settle, and screenshots the video element.
func (v *Viewer) SeekAndCapture(ctx context.Context, offsetSeconds int) ([]byte, error) {
	_, err := v.page.Context(ctx).Eval(`(t) => { document.querySelector('video').currentTime = t; }`, offsetSeconds)
	if err != nil {
		return nil, &CaptureError{OffsetSeconds: offsetSeconds, Err: fmt.Errorf("seek: %w", err)}
	}

	sleepCtx(ctx, v.cfg.FrameSettle)

	el, err := v.page.Context(ctx).Timeout(v.cfg.WaitTimeout).Element(videoSelector)
	if err != nil {
		return nil, &CaptureError{OffsetSeconds: offsetSeconds, Err: fmt.Errorf("video element: %w", err)}
	}

	image, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, &CaptureError{OffsetSeconds: offsetSeconds, Err: fmt.Errorf("screenshot: %w", err)}
	}

	return image, nil
}

// Close shuts down the page, browser, and launched Chrome process.
func (v *Viewer) Close() error {
	var firstErr error
	if v.page != nil {
		if err := v.page.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if v.browser != nil {
		if err := v.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if v.launcher != nil {
		v.launcher.Cleanup()
	}
	return firstErr
}

// saveDiagnostic screenshots the full page into the diagnostics sink.
// Best effort only.
func (v *Viewer) saveDiagnostic(ctx context.Context, name string) {
	if v.diag == nil {
		return
	}
	image, err := v.page.Context(ctx).Screenshot(true, nil)
	if err != nil {
		v.logger.Warn("diagnostic screenshot failed", "name", name, "error", err)
		return
	}
	ref, err := v.diag.SaveDiagnostic(name, image)
	if err != nil {
		v.logger.Warn("diagnostic save failed", "name", name, "error", err)
		return
	}
	v.logger.Info("diagnostic screenshot saved", "path", ref)
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

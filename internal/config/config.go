package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical lecture viewer behavior.
const (
	// DefaultWorkers is the number of concurrent thumbnail workers.
	// OCR is CPU-bound and image fetches are I/O-bound, so a small pool
	// keeps both busy without saturating the machine or the viewer's CDN.
	DefaultWorkers = 5

	// DefaultFrameSettle is the wait after seeking the video before
	// capturing a frame. Players repaint asynchronously after a seek, and
	// capturing too early yields a stale or black frame.
	DefaultFrameSettle = 1500 * time.Millisecond

	// DefaultPageSettle is the wait after the viewer page loads before
	// reading its markup. Thumbnail strips are populated by scripts after
	// the load event fires.
	DefaultPageSettle = 5 * time.Second

	// DefaultNavigationTimeout bounds the initial page navigation.
	// Lecture viewers sit behind institutional SSO and can be slow to
	// respond on first load.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultOCRTimeout bounds a single tesseract invocation.
	// A healthy run takes a second or two per frame; anything longer
	// indicates a wedged subprocess.
	DefaultOCRTimeout = 30 * time.Second

	// DefaultFetchTimeout bounds a single thumbnail download.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultHistoryLimit is the number of past runs the history command
	// shows by default.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "clickerscrape"

	// DefaultUserAgent identifies clickerscrape in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "clicker-scrape/1.0 (+https://github.com/Bennyli1995/clicker-scrape)"

	// DefaultMaxBodySize limits the maximum thumbnail body size to read.
	// 10MB is generous for a preview image while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for clickerscrape.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., BrowserConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// LectureURL is the lecture viewer page to scan.
	// This is required and comes from the positional CLI argument.
	LectureURL string

	// ProfileName selects the viewer profile that provides CSS selectors
	// and trigger phrases. Defaults to the built-in "panopto" profile.
	ProfileName string

	// Workers is the number of concurrent thumbnail workers.
	Workers int

	// FrameSettle is the wait after a video seek before capturing a frame.
	FrameSettle time.Duration

	// PageSettle is the wait after page load before reading viewer markup.
	PageSettle time.Duration

	// NavigationTimeout bounds the initial page navigation.
	NavigationTimeout time.Duration

	// OCRTimeout bounds a single tesseract invocation.
	OCRTimeout time.Duration

	// FetchTimeout bounds a single thumbnail download.
	FetchTimeout time.Duration

	// TesseractPath overrides the tesseract binary location.
	// When empty, the binary is resolved from PATH.
	TesseractPath string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .clickerscrape.yaml in the current
	// directory and then in the XDG config directory.
	ConfigFilePath string

	// Profiles holds viewer profiles loaded from the config file.
	// This is populated by LoadConfigFile and used to resolve ProfileName.
	Profiles *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ArchiveDir is the directory for saved frames, code images, and
	// diagnostics. When empty, nothing is written to disk.
	ArchiveDir string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory
	// (~/.local/share/clickerscrape on Linux).
	DBDir string

	// SaveToDB indicates whether to record the run in the history database.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with thumbnail requests.
	UserAgent string

	// MaxBodySize is the maximum thumbnail body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, worker
// counts). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ProfileName:       DefaultProfileName,
		Workers:           DefaultWorkers,
		FrameSettle:       DefaultFrameSettle,
		PageSettle:        DefaultPageSettle,
		NavigationTimeout: DefaultNavigationTimeout,
		OCRTimeout:        DefaultOCRTimeout,
		FetchTimeout:      DefaultFetchTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for clickerscrape.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/clickerscrape
// On macOS: ~/Library/Application Support/clickerscrape
// On Windows: %LOCALAPPDATA%\clickerscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for clickerscrape.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/clickerscrape
// On macOS: ~/Library/Application Support/clickerscrape
// On Windows: %APPDATA%\clickerscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for clickerscrape.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/clickerscrape
// On macOS: ~/Library/Caches/clickerscrape
// On Windows: %LOCALAPPDATA%\clickerscrape\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a viewer page to scan
	if c.LectureURL == "" {
		return ErrNoLectureURL
	}

	// Workers must be positive; zero would mean no scanning
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// Settle delays must be non-negative
	if c.FrameSettle < 0 || c.PageSettle < 0 {
		return ErrInvalidSettle
	}

	// Timeouts must be positive; zero would cause immediate failures
	if c.NavigationTimeout <= 0 || c.OCRTimeout <= 0 || c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

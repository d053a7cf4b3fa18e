package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bennyli1995/clicker-scrape/internal/archive"
	"github.com/Bennyli1995/clicker-scrape/internal/browser"
	"github.com/Bennyli1995/clicker-scrape/internal/catalog"
	"github.com/Bennyli1995/clicker-scrape/internal/config"
	"github.com/Bennyli1995/clicker-scrape/internal/database"
	"github.com/Bennyli1995/clicker-scrape/internal/fetch"
	"github.com/Bennyli1995/clicker-scrape/internal/log"
	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"github.com/Bennyli1995/clicker-scrape/internal/ocr"
	"github.com/Bennyli1995/clicker-scrape/internal/recognize"
	"github.com/Bennyli1995/clicker-scrape/internal/report"
	"github.com/Bennyli1995/clicker-scrape/internal/scan"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [lecture-url]",
		Short: "Extract attendance codes from a recorded lecture",
		Long: `Scan opens a lecture viewer page in a headless browser and recovers the
attendance codes shown during class.

It works in two phases:
- Thumbnail phase: downloads the viewer's preview thumbnails and runs OCR
  over them concurrently. This is fast because no video playback is needed.
- Video phase: only when the thumbnails yield nothing, seeks the video to
  each navigation point, captures the frame, and runs OCR sequentially.

Examples:
  # Scan a lecture recording
  clickerscrape scan https://viewer.example.edu/lecture/5

  # Archive frames and diagnostics next to the report
  clickerscrape scan --archive ./lecture5 https://viewer.example.edu/lecture/5

  # Output a Markdown report to a file
  clickerscrape scan --markdown -o report.md https://viewer.example.edu/lecture/5

  # Use a viewer profile defined in the config file
  clickerscrape scan --profile echo360 https://viewer.example.edu/lecture/5

Configuration file (.clickerscrape.yaml) example:
  profiles:
    echo360:
      stripSelector: ".slide-strip"
      playerSelector: ".echo-player"
      imageAttr: "src"
      thumbnailClass: "slide"
      timestampClass: "slide-time"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	// Viewer flags
	cmd.Flags().StringP("profile", "p", config.DefaultProfileName,
		"Viewer profile providing CSS selectors and trigger phrases")
	cmd.Flags().Duration("page-settle", config.DefaultPageSettle,
		"Wait after page load before reading viewer markup")
	cmd.Flags().Duration("frame-settle", config.DefaultFrameSettle,
		"Wait after a video seek before capturing the frame")
	cmd.Flags().Duration("nav-timeout", config.DefaultNavigationTimeout,
		"Timeout for the initial page navigation")

	// Scan behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent thumbnail workers")
	cmd.Flags().Duration("ocr-timeout", config.DefaultOCRTimeout,
		"Timeout for a single tesseract invocation")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout for a single thumbnail download")
	cmd.Flags().String("tesseract", "",
		"Path to the tesseract binary (default: resolved from PATH)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .clickerscrape.yaml in current or XDG config directory)")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("archive", "a", "",
		"Directory for saved frames, code images, and diagnostics")
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with phase annotation
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExtraction(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ProfileName, err = cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}

	cfg.PageSettle, err = cmd.Flags().GetDuration("page-settle")
	if err != nil {
		return nil, err
	}

	cfg.FrameSettle, err = cmd.Flags().GetDuration("frame-settle")
	if err != nil {
		return nil, err
	}

	cfg.NavigationTimeout, err = cmd.Flags().GetDuration("nav-timeout")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.OCRTimeout, err = cmd.Flags().GetDuration("ocr-timeout")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("fetch-timeout")
	if err != nil {
		return nil, err
	}

	cfg.TesseractPath, err = cmd.Flags().GetString("tesseract")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load viewer profiles from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently continue with built-in profiles.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ArchiveDir, err = cmd.Flags().GetString("archive")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional argument is the lecture viewer URL
	if len(args) > 0 {
		cfg.LectureURL = args[0]
	}

	return cfg, nil
}

// runExtraction executes the extraction end to end.
func runExtraction(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	profile, err := cfg.ResolveProfile()
	if err != nil {
		return err
	}

	logger.Info("starting extraction",
		"lectureURL", cfg.LectureURL,
		"profile", cfg.ProfileName,
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	// Open archive store if requested
	var store *archive.Store
	if cfg.ArchiveDir != "" {
		store, err = archive.NewStore(cfg.ArchiveDir)
		if err != nil {
			return fmt.Errorf("failed to open archive directory: %w", err)
		}
		logger.Info("archiving enabled", "dir", store.Root())
	}

	// Open history database if enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
	}

	// Drive the viewer page in a headless browser
	viewerCfg := browser.DefaultConfig()
	viewerCfg.StripSelector = profile.StripSelector
	viewerCfg.PlayerSelector = profile.PlayerSelector
	viewerCfg.NavigationTimeout = cfg.NavigationTimeout
	viewerCfg.PageSettle = cfg.PageSettle
	viewerCfg.FrameSettle = cfg.FrameSettle

	viewerOpts := []browser.ViewerOption{browser.WithViewerLogger(logger)}
	if store != nil {
		viewerOpts = append(viewerOpts, browser.WithDiagnostics(store))
	}
	viewer := browser.NewViewer(viewerCfg, viewerOpts...)

	fmt.Printf("Opening %s...\n", cfg.LectureURL)
	if err := viewer.Open(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := viewer.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}()

	if err := viewer.Navigate(ctx, cfg.LectureURL); err != nil {
		return fmt.Errorf("failed to load viewer page: %w", err)
	}

	markup, err := viewer.HTML(ctx)
	if err != nil {
		return fmt.Errorf("failed to read viewer markup: %w", err)
	}
	if store != nil {
		if _, err := store.SavePageHTML(markup); err != nil {
			logger.Warn("failed to archive page markup", "error", err)
		}
	}

	// Assemble the extraction controller
	engineOpts := []ocr.TesseractOption{
		ocr.WithOCRTimeout(cfg.OCRTimeout),
		ocr.WithOCRLogger(logger),
	}
	if cfg.TesseractPath != "" {
		engineOpts = append(engineOpts, ocr.WithBinary(cfg.TesseractPath))
	}
	engine, err := ocr.NewTesseract(engineOpts...)
	if err != nil {
		return fmt.Errorf("tesseract is required for OCR: %w", err)
	}

	provider := catalog.NewProvider(
		catalog.WithImageAttr(profile.ImageAttr),
		catalog.WithThumbnailClass(profile.ThumbnailClass),
		catalog.WithTimestampClass(profile.TimestampClass),
	)

	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)

	controllerOpts := []scan.ControllerOption{
		scan.WithConcurrency(cfg.Workers),
		scan.WithLogger(logger),
		scan.WithEvents(consoleEvents()),
		scan.WithRecognizers(
			recognize.New(model.PhaseThumbnail, recognize.WithTriggerPhrases(profile.TriggerPhrases)),
			recognize.New(model.PhaseVideo, recognize.WithTriggerPhrases(profile.TriggerPhrases)),
		),
	}
	if store != nil {
		controllerOpts = append(controllerOpts, scan.WithArchiver(store))
	}
	controller := scan.NewController(provider, fetcher, viewer, engine, controllerOpts...)

	// Run the extraction
	extraction := model.NewExtractionReport(cfg.LectureURL, cfg.ProfileName)
	startTime := time.Now()

	err = controller.Extract(ctx, markup, extraction)
	extraction.Duration = time.Since(startTime)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("\nExtraction completed in %s\n", extraction.Duration.Round(time.Millisecond))

	// Generate and output report
	if err := outputReport(cfg, extraction); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Record the run in the history database
	if db != nil {
		if err := db.SaveRun(ctx, extraction); err != nil {
			logger.Error("failed to save run history", "error", err)
		} else {
			logger.Info("run recorded", "runID", extraction.RunID)
		}
	}

	return nil
}

// consoleEvents prints scan progress to stdout.
// Thumbnail workers fire callbacks concurrently, so output is serialized
// with a mutex.
func consoleEvents() scan.Events {
	var mu sync.Mutex
	return scan.Events{
		PhaseStarted: func(phase model.Phase, total int) {
			mu.Lock()
			defer mu.Unlock()
			switch phase {
			case model.PhaseThumbnail:
				fmt.Printf("Scanning %d thumbnail(s)...\n", total)
			case model.PhaseVideo:
				fmt.Printf("No codes in thumbnails; seeking through %d video frame(s)...\n", total)
			}
		},
		CodeFound: func(_ model.Phase, label, code string) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Printf("  [+] %s (at %s)\n", code, label)
		},
		PhaseFinished: func(phase model.Phase, distinctCodes int) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Printf("%s phase done: %d distinct code(s) so far\n", phaseLabel(phase), distinctCodes)
		},
	}
}

// phaseLabel returns the phase name with an initial capital for console output.
func phaseLabel(phase model.Phase) string {
	switch phase {
	case model.PhaseThumbnail:
		return "Thumbnail"
	case model.PhaseVideo:
		return "Video"
	default:
		return "Unknown"
	}
}

// outputReport outputs the extraction report in the requested format.
func outputReport(cfg *config.Config, extraction *model.ExtractionReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(extraction)
	return err
}

package scan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Bennyli1995/clicker-scrape/internal/log"
	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"github.com/Bennyli1995/clicker-scrape/internal/recognize"
)

// Controller orchestrates the two extraction phases over one lecture.
//
// The thumbnail phase runs first: all gallery thumbnails go through the
// worker pool. Only when it yields nothing does the controller fall back to
// the video phase, seeking the player through the navigation points one at
// a time. The accumulator set is owned exclusively by the controller for
// the duration of one Extract call; an empty final set is a legitimate
// "no code found" outcome, not a failure.
type Controller struct {
	catalog CatalogProvider
	fetcher FrameFetcher

	// video drives the player for the fallback phase. May be nil, which
	// degrades to "video phase unavailable".
	video VideoSource

	ocr TextExtractor

	// thumbRecognizer and videoRecognizer carry the per-phase pattern
	// variants (single-token vs two-token minimum).
	thumbRecognizer CodeRecognizer
	videoRecognizer CodeRecognizer

	concurrency int
	logger      *slog.Logger
	events      Events
	archive     Archiver
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithConcurrency sets the thumbnail-phase worker pool width.
func WithConcurrency(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEvents sets the progress event callbacks.
func WithEvents(events Events) ControllerOption {
	return func(c *Controller) {
		c.events = events
	}
}

// WithArchiver sets the optional archiver for code-bearing frames.
func WithArchiver(archive Archiver) ControllerOption {
	return func(c *Controller) {
		c.archive = archive
	}
}

// WithRecognizers replaces the default per-phase recognizers.
// Used by the CLI to apply profile trigger phrases and by tests.
func WithRecognizers(thumbnail, video CodeRecognizer) ControllerOption {
	return func(c *Controller) {
		if thumbnail != nil {
			c.thumbRecognizer = thumbnail
		}
		if video != nil {
			c.videoRecognizer = video
		}
	}
}

// NewController creates a Controller over the given capabilities.
// video may be nil when no player capability exists; the video phase is
// then skipped entirely.
func NewController(catalog CatalogProvider, fetcher FrameFetcher, video VideoSource, ocr TextExtractor, opts ...ControllerOption) *Controller {
	c := &Controller{
		catalog:         catalog,
		fetcher:         fetcher,
		video:           video,
		ocr:             ocr,
		thumbRecognizer: recognize.New(model.PhaseThumbnail),
		videoRecognizer: recognize.New(model.PhaseVideo),
		concurrency:     DefaultConcurrency,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Extract runs the two-phase extraction over the rendered viewer markup and
// records the result on the report. The returned error is non-nil only when
// the context was cancelled; "zero codes found" is a successful outcome.
func (c *Controller) Extract(ctx context.Context, markup string, report *model.ExtractionReport) error {
	acc := model.NewCodeSet()

	if err := c.runThumbnailPhase(ctx, markup, report, acc); err != nil {
		return err
	}

	if acc.Len() == 0 {
		if err := c.runVideoPhase(ctx, markup, report, acc); err != nil {
			return err
		}
	}

	report.Codes = acc.Slice()
	return nil
}

// runThumbnailPhase scans the thumbnail gallery through the worker pool and
// folds every outcome into the accumulator.
func (c *Controller) runThumbnailPhase(ctx context.Context, markup string, report *model.ExtractionReport, acc *model.CodeSet) error {
	ctx = log.WithPhase(ctx, model.PhaseThumbnail)
	report.PhaseReached = model.PhaseThumbnail

	thumbs := c.catalog.Thumbnails(markup)
	report.ThumbnailCount = len(thumbs)
	c.logger.InfoContext(ctx, "scanning thumbnails", "count", len(thumbs))

	if len(thumbs) == 0 {
		return nil
	}

	pool := NewPool(c.fetcher, c.ocr, c.thumbRecognizer,
		WithPoolConcurrency(c.concurrency),
		WithPoolLogger(c.logger),
		WithPoolEvents(c.events),
		WithPoolArchiver(c.archive),
	)

	outcomes, err := pool.Run(ctx, thumbs)
	if err != nil {
		return err
	}

	for _, outcome := range outcomes {
		acc.AddAll(outcome.Codes)
		for _, code := range outcome.Codes {
			report.Detections = append(report.Detections, model.RecognizedCode{
				TimestampLabel: outcome.TimestampLabel,
				CodeText:       code,
				SourceImageRef: outcome.SourceImageRef,
			})
		}
	}

	c.events.phaseFinished(model.PhaseThumbnail, acc.Len())
	return nil
}

// runVideoPhase seeks the player through the navigation points sequentially.
// The player is a single shared stateful resource, so this phase is never
// parallelized: interleaved seeks would corrupt the capture sequence.
func (c *Controller) runVideoPhase(ctx context.Context, markup string, report *model.ExtractionReport, acc *model.CodeSet) error {
	ctx = log.WithPhase(ctx, model.PhaseVideo)
	report.PhaseReached = model.PhaseVideo

	if c.video == nil {
		c.logger.WarnContext(ctx, "no video source configured, skipping video scan")
		return nil
	}

	if err := c.video.LocatePlayer(ctx); err != nil {
		if errors.Is(err, ErrNoPlayer) {
			// Degraded but successful: return whatever the thumbnail
			// phase produced.
			c.logger.WarnContext(ctx, "video player not found, skipping video scan")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.WarnContext(ctx, "video player lookup failed, skipping video scan", "error", err)
		return nil
	}
	report.PlayerLocated = true

	points := c.catalog.NavigationPoints(markup)
	report.NavigationCount = len(points)
	c.logger.InfoContext(ctx, "scanning video frames", "count", len(points))
	c.events.phaseStarted(model.PhaseVideo, len(points))

	for i, point := range points {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.processVideoFrame(ctx, point, report, acc)
		c.events.frameProcessed(model.PhaseVideo, point.TimestampLabel, i+1, len(points))
	}

	c.events.phaseFinished(model.PhaseVideo, acc.Len())
	return nil
}

// processVideoFrame captures and recognizes a single video frame.
// Failures are contained per frame, logged with the timestamp label.
func (c *Controller) processVideoFrame(ctx context.Context, point model.FrameDescriptor, report *model.ExtractionReport, acc *model.CodeSet) {
	image, err := c.video.SeekAndCapture(ctx, point.OffsetSeconds)
	if err != nil {
		c.logger.WarnContext(ctx, "frame capture failed",
			"timestamp", point.TimestampLabel,
			"error", err,
		)
		return
	}
	archiveFrame(c.archive, c.logger, model.PhaseVideo, point.TimestampLabel, image)

	text, err := c.ocr.ExtractText(ctx, image)
	if err != nil {
		c.logger.WarnContext(ctx, "frame OCR failed",
			"timestamp", point.TimestampLabel,
			"error", err,
		)
		return
	}

	codes := c.videoRecognizer.Recognize(text)
	if len(codes) == 0 {
		return
	}

	sourceRef := ""
	for _, code := range codes {
		c.events.codeFound(model.PhaseVideo, point.TimestampLabel, code)
		ref := archiveCode(c.archive, c.logger, code, point.TimestampLabel, image)
		if sourceRef == "" {
			sourceRef = ref
		}
		acc.Add(code)
	}

	for _, code := range codes {
		report.Detections = append(report.Detections, model.RecognizedCode{
			TimestampLabel: point.TimestampLabel,
			CodeText:       code,
			SourceImageRef: sourceRef,
		})
	}
}

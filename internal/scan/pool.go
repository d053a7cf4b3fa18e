package scan

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the worker pool width used when none is configured.
// Five workers keeps the thumbnail CDN comfortable while hiding most of the
// per-image fetch and OCR latency.
const DefaultConcurrency = 5

// Pool runs fetch+OCR+recognize over a batch of thumbnail descriptors with
// bounded parallelism. Each frame is processed independently; a frame that
// fails is logged and contributes nothing, and never aborts its siblings.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled worker
// pool because it's simpler and errgroup handles the concurrency correctly.
// Each frame gets its own goroutine, but only 'concurrency' goroutines run
// simultaneously.
type Pool struct {
	fetcher    FrameFetcher
	ocr        TextExtractor
	recognizer CodeRecognizer

	// concurrency is the maximum number of frames in flight.
	concurrency int

	// logger is used for per-frame diagnostics.
	logger *slog.Logger

	// events receives progress notifications. Callbacks fire from worker
	// goroutines.
	events Events

	// archive, when non-nil, stores images of frames that produced codes.
	archive Archiver

	// outcomes collects per-frame results. Access is synchronized via mu;
	// this is the pool's only cross-task shared state.
	outcomes []model.ScanOutcome
	mu       sync.Mutex
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolConcurrency sets the maximum number of concurrent frames.
// Non-positive values are ignored.
func WithPoolConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithPoolLogger sets a custom logger for the pool.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPoolEvents sets the progress event callbacks.
func WithPoolEvents(events Events) PoolOption {
	return func(p *Pool) {
		p.events = events
	}
}

// WithPoolArchiver sets the optional archiver for code-bearing frames.
func WithPoolArchiver(archive Archiver) PoolOption {
	return func(p *Pool) {
		p.archive = archive
	}
}

// NewPool creates a Pool over the given capabilities.
func NewPool(fetcher FrameFetcher, ocr TextExtractor, recognizer CodeRecognizer, opts ...PoolOption) *Pool {
	p := &Pool{
		fetcher:     fetcher,
		ocr:         ocr,
		recognizer:  recognizer,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run processes every descriptor and returns the outcomes of frames that
// yielded at least one code. Outcome order follows completion, not
// submission; callers fold the result into a set, so order carries no
// meaning. The returned error is non-nil only when the context was
// cancelled mid-batch.
func (p *Pool) Run(ctx context.Context, descriptors []model.FrameDescriptor) ([]model.ScanOutcome, error) {
	total := len(descriptors)
	p.logger.Debug("starting thumbnail batch",
		"total_frames", total,
		"concurrency", p.concurrency,
	)
	p.events.phaseStarted(model.PhaseThumbnail, total)

	startTime := time.Now()
	p.outcomes = make([]model.ScanOutcome, 0, total)
	var completed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, desc := range descriptors {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			outcome := p.processFrame(ctx, desc)
			if outcome != nil {
				p.mu.Lock()
				p.outcomes = append(p.outcomes, *outcome)
				p.mu.Unlock()
			}

			done := int(completed.Add(1))
			p.events.frameProcessed(model.PhaseThumbnail, desc.TimestampLabel, done, total)
			return nil
		})
	}

	err := g.Wait()

	p.logger.Debug("thumbnail batch complete",
		"total_frames", total,
		"code_frames", len(p.outcomes),
		"elapsed", time.Since(startTime),
	)

	return p.outcomes, err
}

// processFrame runs the fetch+OCR+recognize sequence for one frame.
// All failures are contained here: they are logged with the frame's
// timestamp label and converted to a nil outcome.
func (p *Pool) processFrame(ctx context.Context, desc model.FrameDescriptor) *model.ScanOutcome {
	image, err := p.fetcher.FetchByLocator(ctx, desc.Locator)
	if err != nil {
		p.logger.Warn("thumbnail fetch failed",
			"timestamp", desc.TimestampLabel,
			"error", err,
		)
		return nil
	}
	archiveFrame(p.archive, p.logger, model.PhaseThumbnail, desc.TimestampLabel, image)

	text, err := p.ocr.ExtractText(ctx, image)
	if err != nil {
		p.logger.Warn("thumbnail OCR failed",
			"timestamp", desc.TimestampLabel,
			"error", err,
		)
		return nil
	}

	codes := p.recognizer.Recognize(text)
	if len(codes) == 0 {
		return nil
	}

	sourceRef := ""
	for _, code := range codes {
		p.events.codeFound(model.PhaseThumbnail, desc.TimestampLabel, code)
		ref := archiveCode(p.archive, p.logger, code, desc.TimestampLabel, image)
		if sourceRef == "" {
			sourceRef = ref
		}
	}

	return &model.ScanOutcome{
		TimestampLabel: desc.TimestampLabel,
		Codes:          codes,
		SourceImageRef: sourceRef,
	}
}

// archiveFrame stores a raw frame if an archiver is configured.
// Archival failures are logged and otherwise ignored.
func archiveFrame(archive Archiver, logger *slog.Logger, phase model.Phase, label string, image []byte) {
	if archive == nil {
		return
	}
	if _, err := archive.SaveFrame(phase, label, image); err != nil {
		logger.Warn("frame archival failed",
			"timestamp", label,
			"error", err,
		)
	}
}

// archiveCode stores a code-bearing frame if an archiver is configured.
// Archival failures are logged and otherwise ignored.
func archiveCode(archive Archiver, logger *slog.Logger, code, label string, image []byte) string {
	if archive == nil {
		return ""
	}
	ref, err := archive.SaveCodeImage(code, label, image)
	if err != nil {
		logger.Warn("code image archival failed",
			"timestamp", label,
			"code", code,
			"error", err,
		)
		return ""
	}
	return ref
}

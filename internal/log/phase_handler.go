package log

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"github.com/lmittmann/tint"
)

// phaseKey is the context key for the active extraction phase.
type phaseKey struct{}

// WithPhase returns a context annotated with the active extraction phase.
// Loggers built with NewLogger attach it to every record logged under this
// context.
func WithPhase(ctx context.Context, phase model.Phase) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

// PhaseFrom extracts the phase from the context.
// The second return value is false when no phase is set.
func PhaseFrom(ctx context.Context) (model.Phase, bool) {
	phase, ok := ctx.Value(phaseKey{}).(model.Phase)
	return phase, ok
}

// PhaseHandler wraps an slog.Handler and adds a "phase" attribute to every
// record whose context carries one.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (tint, text, JSON)
//  3. Call sites stay free of phase plumbing
type PhaseHandler struct {
	// handler is the underlying slog handler that receives annotated records.
	handler slog.Handler
}

// NewPhaseHandler creates a PhaseHandler wrapping the given handler.
// If handler is nil, the returned PhaseHandler uses slog.Default().Handler().
func NewPhaseHandler(handler slog.Handler) *PhaseHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &PhaseHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *PhaseHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle annotates the record with the context's phase, if any, and passes
// it to the underlying handler.
func (h *PhaseHandler) Handle(ctx context.Context, r slog.Record) error {
	if phase, ok := PhaseFrom(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("phase", phase.String()))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PhaseHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PhaseHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *PhaseHandler) WithGroup(name string) slog.Handler {
	return &PhaseHandler{handler: h.handler.WithGroup(name)}
}

// NewLogger creates the application logger: colorized terminal output via
// tint, wrapped in a PhaseHandler.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})

	return slog.New(NewPhaseHandler(handler))
}

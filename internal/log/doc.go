// Package log provides scan-aware logging built on top of the standard
// slog package.
//
// The PhaseHandler wraps any slog.Handler and annotates every record with
// the extraction phase carried in the context, so per-frame diagnostics from
// deep inside the worker pool identify which strategy produced them without
// each call site threading the phase through explicitly.
//
// NewLogger builds the application logger: a colorized terminal handler
// (lmittmann/tint) wrapped in a PhaseHandler, with the level controlled by
// the verbose flag.
package log

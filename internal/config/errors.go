package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoLectureURL is returned when no lecture viewer URL is specified.
	// This error occurs when the positional argument is missing.
	ErrNoLectureURL = errors.New("no lecture URL specified: provide a viewer page URL")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// A worker count of zero would mean no thumbnails get scanned.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidSettle is returned when a settle delay is negative.
	// A negative delay is invalid; use 0 to capture immediately.
	ErrInvalidSettle = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownProfile is returned when the requested viewer profile is
	// neither built in nor defined in the configuration file.
	ErrUnknownProfile = errors.New("unknown viewer profile")
)

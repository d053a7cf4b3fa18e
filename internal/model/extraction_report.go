package model

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionReport is the final result of one extraction run.
// It is what report writers render and what the history database stores.
//
// Design decision: We use a single flat struct rather than nesting per-phase
// sub-reports because the run is small (a handful of codes) and flat structs
// are simpler to serialize and query.
type ExtractionReport struct {
	// RunID uniquely identifies this extraction run.
	RunID string `json:"run_id"`

	// LectureURL is the viewer page that was scanned.
	LectureURL string `json:"lecture_url"`

	// Profile is the name of the viewer profile used for selectors.
	Profile string `json:"profile"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// PhaseReached is the last phase the controller executed.
	PhaseReached Phase `json:"phase_reached"`

	// PlayerLocated is false when the video player could not be found and
	// the video phase was skipped. This is a degraded-but-successful
	// outcome, not an error.
	PlayerLocated bool `json:"player_located"`

	// ThumbnailCount is the number of thumbnail frames scanned.
	ThumbnailCount int `json:"thumbnail_count"`

	// NavigationCount is the number of video navigation points scanned.
	// Zero when the video phase was never entered.
	NavigationCount int `json:"navigation_count"`

	// Codes are the distinct discovered code strings, sorted.
	Codes []string `json:"codes"`

	// Detections lists every per-frame recognition, including duplicates
	// of the same code at different timestamps.
	Detections []RecognizedCode `json:"detections,omitempty"`
}

// NewExtractionReport creates a report for a run that starts now.
func NewExtractionReport(lectureURL, profile string) *ExtractionReport {
	return &ExtractionReport{
		RunID:      uuid.NewString(),
		LectureURL: lectureURL,
		Profile:    profile,
		StartedAt:  time.Now(),
		Codes:      make([]string, 0),
		Detections: make([]RecognizedCode, 0),
	}
}

// Found reports whether the run discovered at least one code.
func (r *ExtractionReport) Found() bool {
	return len(r.Codes) > 0
}

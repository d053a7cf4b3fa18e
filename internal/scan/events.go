package scan

import "github.com/Bennyli1995/clicker-scrape/internal/model"

// Events receives structured progress notifications from the scan phases.
// Any field may be nil. Callbacks fire from worker goroutines during the
// thumbnail phase, so implementations touching shared state must be
// thread-safe.
//
// Design decision: We use a callback struct rather than printing progress
// directly so the core stays decoupled from any particular console or
// logging mechanism; the CLI wires these to its own presentation.
type Events struct {
	// PhaseStarted fires when a phase begins, with the number of frames
	// it will process.
	PhaseStarted func(phase model.Phase, total int)

	// FrameProcessed fires after each frame completes (successfully or
	// not), with the running completion count.
	FrameProcessed func(phase model.Phase, timestampLabel string, done, total int)

	// CodeFound fires once per code recognized in a frame, before
	// deduplication across frames.
	CodeFound func(phase model.Phase, timestampLabel, code string)

	// PhaseFinished fires when a phase ends, with the number of distinct
	// codes accumulated so far.
	PhaseFinished func(phase model.Phase, distinctCodes int)
}

func (e Events) phaseStarted(phase model.Phase, total int) {
	if e.PhaseStarted != nil {
		e.PhaseStarted(phase, total)
	}
}

func (e Events) frameProcessed(phase model.Phase, label string, done, total int) {
	if e.FrameProcessed != nil {
		e.FrameProcessed(phase, label, done, total)
	}
}

func (e Events) codeFound(phase model.Phase, label, code string) {
	if e.CodeFound != nil {
		e.CodeFound(phase, label, code)
	}
}

func (e Events) phaseFinished(phase model.Phase, distinctCodes int) {
	if e.PhaseFinished != nil {
		e.PhaseFinished(phase, distinctCodes)
	}
}

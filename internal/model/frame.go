package model

// Phase identifies which extraction strategy produced a frame or event.
type Phase int

// Extraction phases, attempted in order.
const (
	// PhaseThumbnail scans the pre-rendered thumbnail gallery concurrently.
	PhaseThumbnail Phase = iota

	// PhaseVideo seeks through the video player and samples frames
	// sequentially. Entered only when PhaseThumbnail finds nothing.
	PhaseVideo
)

// String returns the phase name used in logs, reports, and the database.
func (p Phase) String() string {
	switch p {
	case PhaseThumbnail:
		return "thumbnail"
	case PhaseVideo:
		return "video"
	default:
		return "unknown"
	}
}

// FrameDescriptor identifies a single candidate frame.
// For thumbnail-phase frames, Locator holds the image URL and OffsetSeconds
// is zero. For video-phase frames, Locator is empty and OffsetSeconds is the
// position to seek to before capturing.
//
// Descriptors are immutable: they are created by the catalog provider and
// only read by the scan phases.
type FrameDescriptor struct {
	// Locator is the URL of a pre-rendered thumbnail image.
	Locator string `json:"locator,omitempty"`

	// OffsetSeconds is the playback position to seek to for a video capture.
	OffsetSeconds int `json:"offset_seconds,omitempty"`

	// TimestampLabel is the free-form display timestamp (e.g. "12:34").
	// Used for logging, archival naming, and reporting. Not guaranteed to
	// be parseable.
	TimestampLabel string `json:"timestamp_label"`
}

// OcrResult is the text extracted from a single frame.
// It is transient and never persisted beyond the current scan.
type OcrResult struct {
	// TimestampLabel is the display timestamp of the source frame.
	TimestampLabel string

	// RawText is the OCR output, possibly empty or garbled.
	RawText string
}

// RecognizedCode is a single code discovered in a frame.
type RecognizedCode struct {
	// TimestampLabel is the display timestamp of the source frame.
	TimestampLabel string `json:"timestamp_label"`

	// CodeText is the cleaned uppercase token or multi-word phrase.
	CodeText string `json:"code_text"`

	// SourceImageRef is an opaque handle to the originating image,
	// typically an archived file path. Empty when archival is disabled.
	SourceImageRef string `json:"source_image_ref,omitempty"`
}

// ScanOutcome is the unit emitted per successfully processed frame that
// yielded at least one code. Frames that fail or contain no code produce
// no outcome at all.
type ScanOutcome struct {
	// TimestampLabel is the display timestamp of the source frame.
	TimestampLabel string `json:"timestamp_label"`

	// Codes are the distinct code strings recognized in this frame.
	Codes []string `json:"codes"`

	// SourceImageRef is an opaque handle to the originating image.
	SourceImageRef string `json:"source_image_ref,omitempty"`
}

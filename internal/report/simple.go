package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-detection detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-detection details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ExtractionReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCodes(&sb, report)
	if w.verbose {
		w.writeDetections(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ExtractionReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                   ATTENDANCE CODE EXTRACTION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Lecture:        %s\n", report.LectureURL))
	sb.WriteString(fmt.Sprintf("Profile:        %s\n", displayName(report.Profile)))
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration.Round(10*time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Phase Reached:  %s\n", displayName(report.PhaseReached.String())))
	sb.WriteString(fmt.Sprintf("Thumbnails:     %d scanned\n", report.ThumbnailCount))

	switch {
	case report.PhaseReached == model.PhaseVideo && !report.PlayerLocated:
		sb.WriteString("Video Phase:    SKIPPED (no video player found)\n")
	case report.PhaseReached == model.PhaseVideo:
		sb.WriteString(fmt.Sprintf("Video Frames:   %d captured\n", report.NavigationCount))
	default:
		sb.WriteString("Video Phase:    not needed\n")
	}

	sb.WriteString("\n")
}

// writeCodes writes the discovered code list.
func (w *SimpleWriter) writeCodes(sb *strings.Builder, report *model.ExtractionReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ATTENDANCE CODES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !report.Found() {
		sb.WriteString("  No attendance codes found\n\n")
		return
	}

	for _, code := range report.Codes {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", code))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:  %d code(s)\n", len(report.Codes)))
	sb.WriteString("\n")
}

// writeDetections writes the per-frame detection list.
func (w *SimpleWriter) writeDetections(sb *strings.Builder, report *model.ExtractionReport) {
	if len(report.Detections) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DETECTIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, d := range report.Detections {
		sb.WriteString(fmt.Sprintf("  * %s\n", d.CodeText))
		sb.WriteString(fmt.Sprintf("    Timestamp: %s\n", d.TimestampLabel))
		if d.SourceImageRef != "" {
			sb.WriteString(fmt.Sprintf("    Image: %s\n", d.SourceImageRef))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by clickerscrape\n")
	sb.WriteString("https://github.com/Bennyli1995/clicker-scrape\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

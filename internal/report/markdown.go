package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ExtractionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCodes(md, report)
	w.writeDetections(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ExtractionReport) {
	md.H1("Attendance Code Extraction Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Lecture", "`" + report.LectureURL + "`"},
			{"Profile", displayName(report.Profile)},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(10 * time.Millisecond).String()},
			{"Phase Reached", displayName(report.PhaseReached.String())},
			{"Thumbnails Scanned", strconv.Itoa(report.ThumbnailCount)},
			{"Video Frames Captured", strconv.Itoa(report.NavigationCount)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ExtractionReport) string {
	if report.PhaseReached == model.PhaseVideo && !report.PlayerLocated {
		return "⚠️ Video phase skipped (no player found)"
	}
	return "✅ Complete"
}

// writeCodes writes the discovered code list with an alert summarizing
// the outcome.
func (w *MarkdownWriter) writeCodes(md *markdown.Markdown, report *model.ExtractionReport) {
	md.H2("Attendance Codes")
	md.PlainText("")

	if !report.Found() {
		md.Warningf("No attendance codes were found in %s.", displayName(report.PhaseReached.String())+" phase")
		md.PlainText("")
		return
	}

	md.BulletList(report.Codes...)
	md.PlainText("")
	md.Tipf("%d distinct code(s) recovered.", len(report.Codes))
	md.PlainText("")
}

// writeDetections writes the per-frame detection table.
func (w *MarkdownWriter) writeDetections(md *markdown.Markdown, report *model.ExtractionReport) {
	if len(report.Detections) == 0 {
		return
	}

	md.H2("Detections")
	md.PlainText("")

	rows := make([][]string, len(report.Detections))
	for i, d := range report.Detections {
		image := d.SourceImageRef
		if image == "" {
			image = "-"
		}
		rows[i] = []string{
			d.CodeText,
			d.TimestampLabel,
			truncateString(image, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Code", "Timestamp", "Image"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [clickerscrape](https://github.com/Bennyli1995/clicker-scrape)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

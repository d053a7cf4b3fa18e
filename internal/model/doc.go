// Package model defines the core data structures used throughout
// clicker-scrape.
//
// This package contains the following main types:
//   - FrameDescriptor: A candidate frame to fetch or capture
//   - ScanOutcome: Codes recognized in a single processed frame
//   - CodeSet: The deduplicated accumulator of discovered codes
//   - ExtractionReport: The final result of one extraction run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (catalog, scan, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model

// Package scan drives code extraction over a lecture recording.
//
// Extraction runs in two phases. The thumbnail phase fetches the gallery of
// pre-rendered thumbnails through a bounded-concurrency worker pool; each
// frame is downloaded, OCR-processed, and run through the code recognizer
// independently, with per-frame failures contained and logged. If the
// thumbnail phase finds nothing, the video phase seeks the player through
// the catalog's navigation points sequentially, waiting a settle delay
// before each capture. The single shared seek position makes the video
// phase inherently non-parallelizable.
//
// The browser, HTTP, and OCR dependencies are modeled as small capability
// interfaces (CatalogProvider, FrameFetcher, VideoSource, TextExtractor) so
// the phases can be tested with deterministic fakes instead of a real
// browser or network.
package scan

// Package recognize turns raw OCR text into attendance/clicker-question
// code candidates.
//
// Recognition is a heuristic, not a parser: a frame is only considered when
// it contains a trigger phrase ("attendance code" or "clicker question"),
// candidate tokens are runs of uppercase words not embedded in URLs, times,
// or domain names, and a substring filter removes incidental URL fragments.
// A literal-prompt fallback handles slides where OCR mangled the primary
// pattern.
//
// The thumbnail and video phases use different minimum token counts
// (see Recognizer). Garbled or empty OCR text is "no code", never an error.
package recognize

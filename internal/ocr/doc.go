// Package ocr extracts text from frame images.
//
// The production engine shells out to the tesseract CLI, feeding the image
// on stdin and reading plain text from stdout with a per-call timeout and a
// bounded stderr tail for diagnostics. Before invoking the engine, image
// bytes are decode-checked so unreadable payloads surface as *DecodeError
// rather than confusing subprocess failures.
//
// A frame that decodes but contains no readable text yields an empty
// string, never an error; recognition treats it as "no code".
package ocr

// Package browser drives a headless Chrome session over the lecture viewer
// page using go-rod.
//
// The Viewer owns one page for the lifetime of an extraction run: it
// navigates to the viewer URL, waits for the thumbnail strip to render,
// exposes the page markup for the catalog, and implements the video phase's
// seek-and-capture capability by assigning the player's currentTime and
// screenshotting the video element after a settle delay.
//
// The settle delay is a workaround for asynchronous frame rendering; 1.5
// seconds is the observed minimum for the frame to stabilize after a seek.
// If the player ever exposes a real "frame ready" signal, capture should
// block on that instead.
package browser

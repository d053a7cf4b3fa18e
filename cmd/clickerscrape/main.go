// Package main provides the entry point for the clickerscrape CLI.
//
// clickerscrape recovers in-class attendance codes from recorded lecture
// videos. It scans the viewer's thumbnail gallery with OCR and, when the
// gallery comes up empty, steps through the video itself frame by frame.
//
// Usage:
//
//	clickerscrape scan <lecture-url>
//	clickerscrape history
//
// See --help for all available options.
package main

// main is the entry point for clickerscrape.
func main() {
	Execute()
}

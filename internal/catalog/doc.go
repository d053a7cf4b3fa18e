// Package catalog extracts candidate frames from the rendered viewer page.
//
// The viewer renders a thumbnail strip of <li class="thumbnail"> entries,
// each holding a lazily-loaded <img> (URL in a data attribute) and a
// display timestamp. The Provider walks the markup once and yields two
// views of the strip: the ordered thumbnail list for the gallery scan, and
// the sorted, deduplicated navigation points for the video scan.
//
// Unparsable timestamps are skipped, never errors; thumbnail scanning works
// from display labels alone, and the video phase can only seek to offsets
// it can compute.
package catalog

package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"golang.org/x/net/html"
)

// Default selector vocabulary for the stock viewer markup.
// Overridable per platform through the viewer profile.
const (
	// DefaultImageAttr is the attribute carrying a lazily-loaded
	// thumbnail's URL.
	DefaultImageAttr = "data-src"

	// DefaultThumbnailClass marks a thumbnail strip entry.
	DefaultThumbnailClass = "thumbnail"

	// DefaultTimestampClass marks the element holding the display
	// timestamp inside a thumbnail entry.
	DefaultTimestampClass = "thumbnail-timestamp"
)

// unknownTimestamp is the label used when a thumbnail has no readable
// timestamp element.
const unknownTimestamp = "unknown"

// Provider parses viewer markup into frame descriptors.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML that viewer pages routinely
// contain, and a DOM walk keeps the two extraction passes readable.
type Provider struct {
	imageAttr      string
	thumbnailClass string
	timestampClass string
}

// Option configures a Provider.
type Option func(*Provider)

// WithImageAttr sets the attribute carrying the thumbnail image URL.
func WithImageAttr(attr string) Option {
	return func(p *Provider) {
		if attr != "" {
			p.imageAttr = attr
		}
	}
}

// WithThumbnailClass sets the class marking a thumbnail strip entry.
func WithThumbnailClass(class string) Option {
	return func(p *Provider) {
		if class != "" {
			p.thumbnailClass = class
		}
	}
}

// WithTimestampClass sets the class marking the timestamp element.
func WithTimestampClass(class string) Option {
	return func(p *Provider) {
		if class != "" {
			p.timestampClass = class
		}
	}
}

// NewProvider creates a Provider with the default selector vocabulary.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		imageAttr:      DefaultImageAttr,
		thumbnailClass: DefaultThumbnailClass,
		timestampClass: DefaultTimestampClass,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Thumbnails returns the thumbnail frame descriptors in gallery order.
// Each descriptor pairs the image URL from the configured data attribute
// with the display timestamp of the enclosing list entry ("unknown" when
// the entry has none).
func (p *Provider) Thumbnails(markup string) []model.FrameDescriptor {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only fails on reader errors; a string reader never
		// produces one. Keep the nil-safe path anyway.
		return nil
	}

	descriptors := make([]model.FrameDescriptor, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if src := getAttr(n, p.imageAttr); src != "" {
				descriptors = append(descriptors, model.FrameDescriptor{
					Locator:        src,
					TimestampLabel: p.timestampOf(n.Parent),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return descriptors
}

// NavigationPoints returns video seek points derived from the thumbnail
// strip timestamps, sorted by ascending offset and deduplicated.
// Entries whose timestamp cannot be parsed are skipped.
func (p *Provider) NavigationPoints(markup string) []model.FrameDescriptor {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	seen := make(map[int]bool)
	points := make([]model.FrameDescriptor, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" && hasClass(n, p.thumbnailClass) {
			label := p.timestampOf(n)
			if offset, ok := parseTimestamp(label); ok && !seen[offset] {
				seen[offset] = true
				points = append(points, model.FrameDescriptor{
					OffsetSeconds:  offset,
					TimestampLabel: label,
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sort.Slice(points, func(i, j int) bool {
		return points[i].OffsetSeconds < points[j].OffsetSeconds
	})

	return points
}

// timestampOf finds the timestamp text within a thumbnail entry node.
func (p *Provider) timestampOf(n *html.Node) string {
	if n == nil {
		return unknownTimestamp
	}

	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && hasClass(n, p.timestampClass) {
			return strings.TrimSpace(textContent(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if text := find(c); text != "" {
				return text
			}
		}
		return ""
	}

	if text := find(n); text != "" {
		return text
	}
	return unknownTimestamp
}

// parseTimestamp converts "mm:ss" or "h:mm:ss" display timestamps to
// seconds. Returns false for anything else, including "unknown".
func parseTimestamp(label string) (int, bool) {
	parts := strings.Split(label, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	total := 0
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

// hasClass reports whether the node's class attribute contains the class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

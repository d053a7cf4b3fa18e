package recognize

import (
	"regexp"
	"strings"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// Default trigger phrases that mark a frame as a code slide.
// Matched case-insensitively against the full OCR text.
var defaultTriggerPhrases = []string{
	"attendance code",
	"clicker question",
}

// urlFragments are substrings that indicate a candidate is an incidentally
// captured URL fragment rather than a code. Matched against the lowercase
// candidate.
var urlFragments = []string{"http", "www", "join", "com"}

// fallbackPrompt is the literal slide text that precedes a code when the
// primary pattern fails. The match is case-sensitive: OCR reproduces the
// slide template verbatim when it reads it at all.
const fallbackPrompt = "Insert the following attendance code"

// fallbackLinePattern accepts a line consisting of uppercase letters and
// whitespace only.
var fallbackLinePattern = regexp.MustCompile(`^[A-Z\s]+$`)

// Recognizer extracts code candidates from OCR text.
//
// The two phases tolerate different false-positive rates: the thumbnail
// phase accepts single uppercase tokens (e.g. "CAT") while the video phase
// requires at least two (e.g. "LUT DESERT"). This asymmetry is inherited
// from the tuned heuristics and is kept deliberately; whoever owns
// recognition accuracy should decide whether to unify the variants.
type Recognizer struct {
	// minTokens is the minimum number of uppercase tokens a primary-pattern
	// match must contain. 1 for the thumbnail phase, 2 for the video phase.
	minTokens int

	// triggers are the lowercase phrases that mark a frame as a code slide.
	triggers []string
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithTriggerPhrases replaces the default trigger phrases.
// Phrases are matched case-insensitively. Empty phrases are ignored.
func WithTriggerPhrases(phrases []string) Option {
	return func(r *Recognizer) {
		cleaned := make([]string, 0, len(phrases))
		for _, p := range phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			r.triggers = cleaned
		}
	}
}

// New creates a Recognizer for the given scan phase.
func New(phase model.Phase, opts ...Option) *Recognizer {
	r := &Recognizer{
		minTokens: 1,
		triggers:  defaultTriggerPhrases,
	}
	if phase == model.PhaseVideo {
		r.minTokens = 2
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Recognize extracts zero or more code strings from OCR text.
// The result is deduplicated within this single text. An empty result means
// "no code on this frame"; it is never an error condition.
func (r *Recognizer) Recognize(text string) []string {
	if !r.isCodeSlide(text) {
		return nil
	}

	matches := make([]string, 0)
	seen := make(map[string]bool)
	for _, candidate := range r.findCandidates(text) {
		if isURLFragment(candidate) {
			continue
		}
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		matches = append(matches, candidate)
	}

	if len(matches) > 0 {
		return matches
	}

	if code, ok := fallbackCode(text); ok {
		return []string{code}
	}

	return nil
}

// isCodeSlide reports whether the text contains any trigger phrase.
func (r *Recognizer) isCodeSlide(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range r.triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// findCandidates scans for runs of space-separated uppercase tokens (each
// token at least two letters) that are not immediately preceded or followed
// by an alphanumeric, colon, slash, or period. The boundary rule excludes
// tokens embedded in URLs, times, and domain names.
//
// When the character after a multi-token run violates the boundary rule,
// trailing tokens are dropped one group at a time until the boundary before
// the next separator space is acceptable. Dropping part of a token never
// helps (the remainder would start with an uppercase letter, itself a
// boundary violation), so backtracking works in whole-token steps.
func (r *Recognizer) findCandidates(text string) []string {
	candidates := make([]string, 0)

	i := 0
	for i < len(text) {
		if !isUpper(text[i]) {
			i++
			continue
		}

		// A token whose preceding character violates the boundary rule can
		// never start a match, and neither can any position inside it.
		if i > 0 && isBoundary(text[i-1]) {
			for i < len(text) && isUpper(text[i]) {
				i++
			}
			continue
		}

		// Consume the first token.
		j := i
		for j < len(text) && isUpper(text[j]) {
			j++
		}
		if j-i < 2 {
			i = j
			continue
		}

		// Consume further " TOKEN" groups, remembering every group end as a
		// possible match end for backtracking.
		ends := []int{j}
		k := j
		for k < len(text) && text[k] == ' ' {
			t := k + 1
			for t < len(text) && isUpper(text[t]) {
				t++
			}
			if t-(k+1) < 2 {
				break
			}
			k = t
			ends = append(ends, k)
		}

		matched := false
		for e := len(ends) - 1; e >= r.minTokens-1; e-- {
			end := ends[e]
			if end < len(text) && isBoundary(text[end]) {
				continue
			}
			candidates = append(candidates, text[i:end])
			i = end
			matched = true
			break
		}
		if !matched {
			i = j
		}
	}

	return candidates
}

// fallbackCode looks for the literal attendance prompt and inspects the five
// lines that follow it. The first line of uppercase letters and spaces with
// trimmed length greater than three is taken as the code.
func fallbackCode(text string) (string, bool) {
	_, after, found := strings.Cut(text, fallbackPrompt)
	if !found {
		return "", false
	}

	lines := strings.Split(after, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 3 && fallbackLinePattern.MatchString(trimmed) {
			return trimmed, true
		}
	}

	return "", false
}

// isURLFragment reports whether the candidate contains a substring that
// marks it as a captured URL fragment.
func isURLFragment(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, fragment := range urlFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// isUpper reports whether c is an ASCII uppercase letter.
func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// isBoundary reports whether c terminates a candidate when adjacent to it:
// alphanumerics, colon, slash, and period glue a token to URLs, times, and
// domain names.
func isBoundary(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == ':' || c == '/' || c == '.':
		return true
	default:
		return false
	}
}

package recognize

import (
	"reflect"
	"testing"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// TestRecognizeTriggerPhrases tests that text without a trigger phrase never
// yields codes.
func TestRecognizeTriggerPhrases(t *testing.T) {
	t.Parallel()

	r := New(model.PhaseThumbnail)

	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"unrelated slide", "Chapter 3: Sorting Algorithms\nQUICKSORT MERGESORT"},
		{"garbled noise", "~~##@@!! xx"},
		{"code-like text without trigger", "ABCD EFGH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.Recognize(tt.text); len(got) != 0 {
				t.Errorf("expected no codes, got %v", got)
			}
		})
	}
}

// TestRecognizeThumbnailPhase tests the single-token-accepting variant.
func TestRecognizeThumbnailPhase(t *testing.T) {
	t.Parallel()

	r := New(model.PhaseThumbnail)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single uppercase token",
			text: "Today's attendance code is\nCAT",
			want: []string{"CAT"},
		},
		{
			name: "multi-token phrase",
			text: "attendance code\nLUT DESERT\nsee you next week",
			want: []string{"LUT DESERT"},
		},
		{
			name: "token glued to colon is skipped, phrase after survives",
			text: "attendance CODE: LUT DESERT",
			want: []string{"LUT DESERT"},
		},
		{
			name: "url fragments filtered",
			text: "Attendance Code\nJOIN AT WWW EXAMPLE\nBIRD NEST",
			want: []string{"BIRD NEST"},
		},
		{
			name: "token inside domain name excluded",
			text: "attendance code at iclicker.COM\nFROG POND",
			want: []string{"FROG POND"},
		},
		{
			name: "token inside time excluded",
			text: "clicker question at 10:05AM PLEASE ANSWER",
			want: []string{"PLEASE ANSWER"},
		},
		{
			name: "multiple distinct codes on one slide",
			text: "attendance code\nABCD EFGH\nor use\nWXYZ",
			want: []string{"ABCD EFGH", "WXYZ"},
		},
		{
			name: "duplicate codes deduplicated within text",
			text: "attendance code\nMOON RIVER\nMOON RIVER",
			want: []string{"MOON RIVER"},
		},
		{
			name: "trailing boundary drops last token only",
			text: "attendance code\nAB CD:10",
			want: []string{"AB"},
		},
		{
			name: "leading boundary skips first token only",
			text: "attendance code\nxAB CD",
			want: []string{"CD"},
		},
		{
			name: "trigger case-insensitive",
			text: "ATTENDANCE CODE\nOWL BARN",
			want: []string{"ATTENDANCE CODE", "OWL BARN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Recognize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recognize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestRecognizeVideoPhase tests the stricter two-token variant.
func TestRecognizeVideoPhase(t *testing.T) {
	t.Parallel()

	r := New(model.PhaseVideo)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single token rejected",
			text: "attendance code\nCAT",
			want: nil,
		},
		{
			name: "two-token phrase accepted",
			text: "attendance CODE: LUT DESERT",
			want: []string{"LUT DESERT"},
		},
		{
			name: "clicker question trigger",
			text: "Clicker Question\nQRST UVWX",
			want: []string{"QRST UVWX"},
		},
		{
			name: "single tokens ignored alongside a phrase",
			text: "attendance code\nFOO\nRED BARN\nBAR",
			want: []string{"RED BARN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Recognize(tt.text)
			if tt.want == nil {
				if len(got) != 0 {
					t.Errorf("expected no codes, got %v", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recognize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestRecognizeFallback tests the literal-prompt fallback heuristic.
func TestRecognizeFallback(t *testing.T) {
	t.Parallel()

	r := New(model.PhaseThumbnail)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "spaced-out code recovered via prompt",
			text: "Insert the following attendance code into iclicker\nblue sky\nW I N T E R\n",
			want: []string{"W I N T E R"},
		},
		{
			name: "code beyond five lines is missed",
			text: "Insert the following attendance code\nx\nx\nx\nx\nx\nW I N T E R",
			want: nil,
		},
		{
			name: "short lines rejected",
			text: "Insert the following attendance code\nA B\n",
			want: nil,
		},
		{
			name: "primary match wins over fallback",
			text: "Insert the following attendance code\nSILVER FOX\n",
			want: []string{"SILVER FOX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Recognize(tt.text)
			if tt.want == nil {
				if len(got) != 0 {
					t.Errorf("expected no codes, got %v", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recognize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestRecognizeIdempotent tests that repeated recognition of identical text
// yields identical results.
func TestRecognizeIdempotent(t *testing.T) {
	t.Parallel()

	r := New(model.PhaseThumbnail)
	text := "attendance code\nABCD EFGH\nWXYZ\nhttp://join.example.com"

	first := r.Recognize(text)
	second := r.Recognize(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recognition not idempotent: %v then %v", first, second)
	}
}

// TestRecognizeCustomTriggers tests trigger phrase overrides.
func TestRecognizeCustomTriggers(t *testing.T) {
	t.Parallel()

	t.Run("custom phrase replaces defaults", func(t *testing.T) {
		t.Parallel()

		r := New(model.PhaseThumbnail, WithTriggerPhrases([]string{"participation code"}))

		if got := r.Recognize("attendance code\nRED FOX"); len(got) != 0 {
			t.Errorf("default trigger should be replaced, got %v", got)
		}
		if got := r.Recognize("Participation Code\nRED FOX"); len(got) != 1 {
			t.Errorf("expected custom trigger to match, got %v", got)
		}
	})

	t.Run("empty override keeps defaults", func(t *testing.T) {
		t.Parallel()

		r := New(model.PhaseThumbnail, WithTriggerPhrases(nil))

		if got := r.Recognize("attendance code\nRED FOX"); len(got) != 1 {
			t.Errorf("expected default triggers to survive, got %v", got)
		}
	})
}

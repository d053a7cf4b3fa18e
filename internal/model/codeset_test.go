package model

import (
	"reflect"
	"testing"
)

// TestCodeSetAdd tests insertion and deduplication.
func TestCodeSetAdd(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates repeated codes", func(t *testing.T) {
		t.Parallel()

		s := NewCodeSet()
		s.Add("LUT DESERT")
		s.Add("LUT DESERT")
		s.Add("WXYZ")

		if s.Len() != 2 {
			t.Errorf("expected 2 distinct codes, got %d", s.Len())
		}
		if !s.Contains("LUT DESERT") {
			t.Error("expected set to contain LUT DESERT")
		}
	})

	t.Run("ignores empty string", func(t *testing.T) {
		t.Parallel()

		s := NewCodeSet()
		s.Add("")

		if s.Len() != 0 {
			t.Errorf("expected empty set, got %d entries", s.Len())
		}
	})

	t.Run("AddAll merges slices", func(t *testing.T) {
		t.Parallel()

		s := NewCodeSet()
		s.AddAll([]string{"ABCD EFGH", "WXYZ"})
		s.AddAll([]string{"WXYZ"})

		if s.Len() != 2 {
			t.Errorf("expected 2 distinct codes, got %d", s.Len())
		}
	})
}

// TestCodeSetSlice tests deterministic ordering of the snapshot.
func TestCodeSetSlice(t *testing.T) {
	t.Parallel()

	s := NewCodeSet()
	s.Add("WXYZ")
	s.Add("ABCD EFGH")
	s.Add("LUT DESERT")

	got := s.Slice()
	want := []string{"ABCD EFGH", "LUT DESERT", "WXYZ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// TestPhaseString tests the phase display names.
func TestPhaseString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseThumbnail, "thumbnail"},
		{PhaseVideo, "video"},
		{Phase(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

// TestNewExtractionReport tests report construction defaults.
func TestNewExtractionReport(t *testing.T) {
	t.Parallel()

	r := NewExtractionReport("https://example.test/viewer", "panopto")

	if r.RunID == "" {
		t.Error("expected non-empty run ID")
	}
	if r.LectureURL != "https://example.test/viewer" {
		t.Errorf("unexpected lecture URL: %s", r.LectureURL)
	}
	if r.Found() {
		t.Error("new report should have no codes")
	}

	r.Codes = append(r.Codes, "ABCD")
	if !r.Found() {
		t.Error("expected Found() after adding a code")
	}
}

package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// sampleReport builds a finished report for tests.
func sampleReport(runID, lectureURL string) *model.ExtractionReport {
	return &model.ExtractionReport{
		RunID:          runID,
		LectureURL:     lectureURL,
		Profile:        "panopto",
		StartedAt:      time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		Duration:       42 * time.Second,
		PhaseReached:   model.PhaseThumbnail,
		PlayerLocated:  true,
		ThumbnailCount: 6,
		Codes:          []string{"MOON RIVER", "OWL BARN"},
		Detections: []model.RecognizedCode{
			{TimestampLabel: "12:34", CodeText: "MOON RIVER", SourceImageRef: "thumbnails/frame_0001.png"},
			{TimestampLabel: "47:10", CodeText: "OWL BARN"},
		},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, "clickerscrape.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")

		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		_, err := Open(dbDir, opts)
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to mention missing database, got %q", err.Error())
		}

		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created when CreateIfNotExists=false")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")

		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := db1.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()
	})
}

// TestSaveRunAndGetRun tests the save and load round trip.
func TestSaveRunAndGetRun(t *testing.T) {
	t.Parallel()

	t.Run("round trips a report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := sampleReport("run-1", "https://viewer.example.edu/lecture/5")
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		got, err := db.GetRun(ctx, "run-1")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got == nil {
			t.Fatal("expected report, got nil")
		}
		if got.LectureURL != report.LectureURL {
			t.Errorf("LectureURL = %q, want %q", got.LectureURL, report.LectureURL)
		}
		if got.PhaseReached != model.PhaseThumbnail {
			t.Errorf("PhaseReached = %v, want %v", got.PhaseReached, model.PhaseThumbnail)
		}
		if len(got.Codes) != 2 || got.Codes[0] != "MOON RIVER" {
			t.Errorf("Codes = %v, want [MOON RIVER OWL BARN]", got.Codes)
		}
		if len(got.Detections) != 2 {
			t.Errorf("len(Detections) = %d, want 2", len(got.Detections))
		}
	})

	t.Run("missing run returns nil without error", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		got, err := db.GetRun(context.Background(), "no-such-run")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil report, got %+v", got)
		}
	})

	t.Run("saving the same run twice replaces it", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := sampleReport("run-dup", "https://viewer.example.edu/lecture/9")
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		report.Codes = []string{"LUT DESERT"}
		report.Detections = []model.RecognizedCode{
			{TimestampLabel: "01:05", CodeText: "LUT DESERT"},
		}
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to re-save run: %v", err)
		}

		runs, err := db.RecentRuns(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("len(runs) = %d, want 1", len(runs))
		}
		if runs[0].CodeCount != 1 {
			t.Errorf("CodeCount = %d, want 1", runs[0].CodeCount)
		}

		got, err := db.GetRun(ctx, "run-dup")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if len(got.Detections) != 1 || got.Detections[0].CodeText != "LUT DESERT" {
			t.Errorf("Detections = %+v, want single LUT DESERT", got.Detections)
		}
	})
}

// TestRecentRuns tests history listing order and limits.
func TestRecentRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		report := sampleReport(id, "https://viewer.example.edu/lecture/1")
		report.StartedAt = base.Add(time.Duration(i) * time.Hour)
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run %s: %v", id, err)
		}
	}

	runs, err := db.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].RunID != "run-c" || runs[1].RunID != "run-b" {
		t.Errorf("run order = [%s %s], want [run-c run-b]", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].CodeCount != 2 {
		t.Errorf("CodeCount = %d, want 2", runs[0].CodeCount)
	}
	if runs[0].Duration != 42*time.Second {
		t.Errorf("Duration = %v, want 42s", runs[0].Duration)
	}
	if runs[0].StartedAt.IsZero() {
		t.Error("StartedAt should have been parsed")
	}
}

// TestCodesForLecture tests cross-run code aggregation.
func TestCodesForLecture(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	first := sampleReport("run-x", "https://viewer.example.edu/lecture/7")
	if err := db.SaveRun(ctx, first); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	second := sampleReport("run-y", "https://viewer.example.edu/lecture/7")
	second.Detections = []model.RecognizedCode{
		{TimestampLabel: "05:00", CodeText: "MOON RIVER"},
		{TimestampLabel: "55:00", CodeText: "ZEBRA CROSSING"},
	}
	if err := db.SaveRun(ctx, second); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	other := sampleReport("run-z", "https://viewer.example.edu/lecture/8")
	other.Detections = []model.RecognizedCode{
		{TimestampLabel: "00:30", CodeText: "OTHER LECTURE"},
	}
	if err := db.SaveRun(ctx, other); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	codes, err := db.CodesForLecture(ctx, "https://viewer.example.edu/lecture/7")
	if err != nil {
		t.Fatalf("failed to query codes: %v", err)
	}

	want := []string{"MOON RIVER", "OWL BARN", "ZEBRA CROSSING"}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("codes[%d] = %q, want %q", i, codes[i], code)
		}
	}
}

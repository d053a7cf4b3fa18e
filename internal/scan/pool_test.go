package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Bennyli1995/clicker-scrape/internal/model"
	"github.com/Bennyli1995/clicker-scrape/internal/recognize"
)

// fakeFetcher serves image bytes by locator. To keep fakes simple, the
// "image" is the OCR text itself; fakeOCR hands it straight back.
type fakeFetcher struct {
	mu     sync.Mutex
	images map[string]string
	failOn map[string]bool
	calls  int
}

func (f *fakeFetcher) FetchByLocator(_ context.Context, locator string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failOn[locator] {
		return nil, fmt.Errorf("fetch %s: %w", locator, errors.New("connection reset"))
	}
	text, ok := f.images[locator]
	if !ok {
		return nil, fmt.Errorf("fetch %s: not found", locator)
	}
	return []byte(text), nil
}

// fakeOCR returns the image bytes as text.
type fakeOCR struct {
	failOn string
}

func (f *fakeOCR) ExtractText(_ context.Context, image []byte) (string, error) {
	if f.failOn != "" && string(image) == f.failOn {
		return "", errors.New("engine crashed")
	}
	return string(image), nil
}

// fakeArchiver records saved frames and code images.
type fakeArchiver struct {
	mu     sync.Mutex
	saved  []string
	frames []string
	fail   bool
}

func (f *fakeArchiver) SaveFrame(phase model.Phase, timestampLabel string, _ []byte) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := fmt.Sprintf("%s/frame_%s.jpg", phase, timestampLabel)
	f.frames = append(f.frames, ref)
	return ref, nil
}

func (f *fakeArchiver) SaveCodeImage(code, timestampLabel string, _ []byte) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := fmt.Sprintf("codes/%s_%s.png", code, timestampLabel)
	f.saved = append(f.saved, ref)
	return ref, nil
}

// thumbnailDescriptors builds descriptors for every locator key.
func thumbnailDescriptors(images map[string]string) []model.FrameDescriptor {
	descs := make([]model.FrameDescriptor, 0, len(images))
	i := 0
	for locator := range images {
		descs = append(descs, model.FrameDescriptor{
			Locator:        locator,
			TimestampLabel: fmt.Sprintf("%02d:00", i),
		})
		i++
	}
	return descs
}

// unionCodes folds outcomes into a CodeSet the way the controller does.
func unionCodes(outcomes []model.ScanOutcome) *model.CodeSet {
	acc := model.NewCodeSet()
	for _, o := range outcomes {
		acc.AddAll(o.Codes)
	}
	return acc
}

// TestPoolRun tests that the pool aggregates exactly the code-bearing
// frames regardless of worker count.
func TestPoolRun(t *testing.T) {
	t.Parallel()

	images := map[string]string{
		"https://cdn.test/thumb1.jpg": "lecture outline slide",
		"https://cdn.test/thumb2.jpg": "attendance code\nABCD EFGH",
		"https://cdn.test/thumb3.jpg": "more lecture content",
		"https://cdn.test/thumb4.jpg": "Attendance Code\nWXYZ",
		"https://cdn.test/thumb5.jpg": "",
		"https://cdn.test/thumb6.jpg": "summary slide",
	}

	for _, workers := range []int{1, 5} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			fetcher := &fakeFetcher{images: images}
			pool := NewPool(fetcher, &fakeOCR{}, recognize.New(model.PhaseThumbnail),
				WithPoolConcurrency(workers),
			)

			outcomes, err := pool.Run(context.Background(), thumbnailDescriptors(images))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(outcomes) != 2 {
				t.Fatalf("expected 2 code-bearing outcomes, got %d", len(outcomes))
			}

			acc := unionCodes(outcomes)
			if acc.Len() != 2 {
				t.Errorf("expected 2 distinct codes, got %v", acc.Slice())
			}
			for _, want := range []string{"ABCD EFGH", "WXYZ"} {
				if !acc.Contains(want) {
					t.Errorf("expected code %q in %v", want, acc.Slice())
				}
			}
			if fetcher.calls != len(images) {
				t.Errorf("expected %d fetches, got %d", len(images), fetcher.calls)
			}
		})
	}
}

// TestPoolFailureIsolation tests that a single failing frame never prevents
// the pool from completing and reporting the remaining outcomes.
func TestPoolFailureIsolation(t *testing.T) {
	t.Parallel()

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()

		images := map[string]string{
			"https://cdn.test/a.jpg": "attendance code\nRED BARN",
			"https://cdn.test/b.jpg": "attendance code\nBLUE LAKE",
			"https://cdn.test/c.jpg": "noise",
		}
		fetcher := &fakeFetcher{
			images: images,
			failOn: map[string]bool{"https://cdn.test/b.jpg": true},
		}

		pool := NewPool(fetcher, &fakeOCR{}, recognize.New(model.PhaseThumbnail))
		outcomes, err := pool.Run(context.Background(), thumbnailDescriptors(images))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		acc := unionCodes(outcomes)
		if !acc.Contains("RED BARN") {
			t.Errorf("surviving frame lost: %v", acc.Slice())
		}
		if acc.Contains("BLUE LAKE") {
			t.Error("failed frame should contribute nothing")
		}
	})

	t.Run("ocr failure", func(t *testing.T) {
		t.Parallel()

		images := map[string]string{
			"https://cdn.test/a.jpg": "attendance code\nRED BARN",
			"https://cdn.test/b.jpg": "attendance code\nBLUE LAKE",
		}
		fetcher := &fakeFetcher{images: images}
		ocr := &fakeOCR{failOn: "attendance code\nBLUE LAKE"}

		pool := NewPool(fetcher, ocr, recognize.New(model.PhaseThumbnail))
		outcomes, err := pool.Run(context.Background(), thumbnailDescriptors(images))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		acc := unionCodes(outcomes)
		if acc.Len() != 1 || !acc.Contains("RED BARN") {
			t.Errorf("expected only RED BARN, got %v", acc.Slice())
		}
	})
}

// TestPoolProgressEvents tests that progress is observable without losing
// completions.
func TestPoolProgressEvents(t *testing.T) {
	t.Parallel()

	images := map[string]string{
		"https://cdn.test/a.jpg": "attendance code\nRED BARN",
		"https://cdn.test/b.jpg": "noise",
		"https://cdn.test/c.jpg": "noise",
	}

	var mu sync.Mutex
	processed := 0
	started := -1
	codes := make([]string, 0)

	events := Events{
		PhaseStarted: func(phase model.Phase, total int) {
			mu.Lock()
			defer mu.Unlock()
			if phase == model.PhaseThumbnail {
				started = total
			}
		},
		FrameProcessed: func(_ model.Phase, _ string, _, _ int) {
			mu.Lock()
			defer mu.Unlock()
			processed++
		},
		CodeFound: func(_ model.Phase, _, code string) {
			mu.Lock()
			defer mu.Unlock()
			codes = append(codes, code)
		},
	}

	fetcher := &fakeFetcher{images: images}
	pool := NewPool(fetcher, &fakeOCR{}, recognize.New(model.PhaseThumbnail),
		WithPoolEvents(events),
	)

	if _, err := pool.Run(context.Background(), thumbnailDescriptors(images)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if started != len(images) {
		t.Errorf("expected PhaseStarted with total %d, got %d", len(images), started)
	}
	if processed != len(images) {
		t.Errorf("expected %d FrameProcessed events, got %d", len(images), processed)
	}
	if len(codes) != 1 || codes[0] != "RED BARN" {
		t.Errorf("expected one CodeFound for RED BARN, got %v", codes)
	}
}

// TestPoolArchiver tests that code-bearing frames are archived and that
// archival failures stay contained.
func TestPoolArchiver(t *testing.T) {
	t.Parallel()

	images := map[string]string{
		"https://cdn.test/a.jpg": "attendance code\nRED BARN",
	}

	t.Run("stores code images and records the reference", func(t *testing.T) {
		t.Parallel()

		archive := &fakeArchiver{}
		pool := NewPool(&fakeFetcher{images: images}, &fakeOCR{}, recognize.New(model.PhaseThumbnail),
			WithPoolArchiver(archive),
		)

		outcomes, err := pool.Run(context.Background(), thumbnailDescriptors(images))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(outcomes) != 1 {
			t.Fatalf("expected one outcome, got %d", len(outcomes))
		}
		if outcomes[0].SourceImageRef == "" {
			t.Error("expected outcome to carry the archived reference")
		}
		if len(archive.saved) != 1 {
			t.Errorf("expected one archived code image, got %d", len(archive.saved))
		}
		if len(archive.frames) != 1 {
			t.Errorf("expected one archived raw frame, got %d", len(archive.frames))
		}
	})

	t.Run("archival failure does not drop the outcome", func(t *testing.T) {
		t.Parallel()

		archive := &fakeArchiver{fail: true}
		pool := NewPool(&fakeFetcher{images: images}, &fakeOCR{}, recognize.New(model.PhaseThumbnail),
			WithPoolArchiver(archive),
		)

		outcomes, err := pool.Run(context.Background(), thumbnailDescriptors(images))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(outcomes) != 1 {
			t.Fatalf("expected one outcome despite archival failure, got %d", len(outcomes))
		}
		if outcomes[0].SourceImageRef != "" {
			t.Error("expected empty reference when archival fails")
		}
	})
}

// TestPoolDefaults tests the pool option handling.
func TestPoolDefaults(t *testing.T) {
	t.Parallel()

	pool := NewPool(&fakeFetcher{}, &fakeOCR{}, recognize.New(model.PhaseThumbnail))
	if pool.concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, pool.concurrency)
	}

	pool = NewPool(&fakeFetcher{}, &fakeOCR{}, recognize.New(model.PhaseThumbnail),
		WithPoolConcurrency(0),
	)
	if pool.concurrency != DefaultConcurrency {
		t.Errorf("non-positive concurrency should keep default, got %d", pool.concurrency)
	}
}

package piclut

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/yzigangirova/piclut-go/mem"
)

// fakeDecoder serves fixed images by path and fails on anything else.
type fakeDecoder struct {
	images map[string]*Image
}

func (d *fakeDecoder) Decode(path string) (*Image, error) {
	if img, ok := d.images[path]; ok {
		return img.Clone(), nil
	}
	return nil, fmt.Errorf("no decoder for %q", path)
}

func newBatchFixture(mm mem.Manager, good ...string) *fakeDecoder {
	d := &fakeDecoder{images: map[string]*Image{}}
	for i, path := range good {
		d.images[path] = randomImage(mm, 8, 8, int64(30+i))
	}
	return d
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBatchRunner_PartialFailure(t *testing.T) {
	mm := mem.NewManager()
	dec := newBatchFixture(mm, "a.png", "b.png", "c.png")
	paths := []string{"a.png", "broken.png", "b.png", "c.png"}

	var progress []BatchProgress
	br := &BatchRunner{
		Decoder:  dec,
		Logger:   quietLogger(),
		Mem:      mm,
		Progress: func(p BatchProgress) { progress = append(progress, p) },
	}

	items, err := br.Run(paths, IdentityLut(2), DefaultConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("len(items) = %d; want 4", len(items))
	}

	var ok, failed int
	for _, item := range items {
		if item.Err != nil {
			failed++
			var de *DecodeError
			if !errors.As(item.Err, &de) {
				t.Errorf("%s: error %v is not a DecodeError", item.Path, item.Err)
			}
			continue
		}
		ok++
		if item.Image == nil {
			t.Errorf("%s: succeeded without an image", item.Path)
		}
	}
	if ok != 3 || failed != 1 {
		t.Errorf("got %d successes, %d failures; want 3, 1", ok, failed)
	}

	// Ordering and progress: one notification per item, in input order.
	if len(progress) != 4 {
		t.Fatalf("got %d progress notifications; want 4", len(progress))
	}
	for i, p := range progress {
		if p.Index != i+1 || p.Total != 4 || p.Path != paths[i] {
			t.Errorf("progress[%d] = %+v", i, p)
		}
	}
	if progress[1].Err == nil {
		t.Error("progress for the broken item carries no error")
	}
}

func TestBatchRunner_AllItemsFailed(t *testing.T) {
	mm := mem.NewManager()
	br := &BatchRunner{
		Decoder: newBatchFixture(mm), // knows no paths at all
		Logger:  quietLogger(),
		Mem:     mm,
	}

	items, err := br.Run([]string{"x.png", "y.png"}, IdentityLut(2), DefaultConfig())
	if !errors.Is(err, ErrAllItemsFailed) {
		t.Fatalf("got %v; want ErrAllItemsFailed", err)
	}
	// Per-item outcomes are still reported alongside the batch error.
	if len(items) != 2 {
		t.Errorf("len(items) = %d; want 2", len(items))
	}
	for _, item := range items {
		if item.Err == nil {
			t.Errorf("%s: expected a recorded failure", item.Path)
		}
	}
}

func TestBatchRunner_EmptyBatch(t *testing.T) {
	mm := mem.NewManager()
	br := &BatchRunner{Decoder: newBatchFixture(mm), Logger: quietLogger(), Mem: mm}

	// Zero items means zero successes, which is a failed batch.
	items, err := br.Run(nil, IdentityLut(2), DefaultConfig())
	if !errors.Is(err, ErrAllItemsFailed) {
		t.Errorf("empty batch: got %v; want ErrAllItemsFailed", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d; want 0", len(items))
	}
}

func TestBatchRunner_InvalidConfigFailsItems(t *testing.T) {
	mm := mem.NewManager()
	dec := newBatchFixture(mm, "a.png")
	br := &BatchRunner{Decoder: dec, Logger: quietLogger(), Mem: mm}

	// A bad config fails every item, so the batch as a whole fails.
	cfg := PipelineConfig{Strength: 2.0}
	_, err := br.Run([]string{"a.png"}, IdentityLut(2), cfg)
	if !errors.Is(err, ErrAllItemsFailed) {
		t.Errorf("got %v; want ErrAllItemsFailed", err)
	}
}

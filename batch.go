package piclut

import (
	"log/slog"

	"github.com/yzigangirova/piclut-go/mem"
)

// Decoder is the external collaborator that turns a source identifier into
// a 3-channel pixel buffer. Decode failures, alpha stripping and container
// formats are its concern.
type Decoder interface {
	Decode(path string) (*Image, error)
}

// BatchProgress is emitted after each batch item completes, whether it
// succeeded or not.
type BatchProgress struct {
	Index int // 1-based position in the batch
	Total int
	Path  string
	Err   error // nil on success
}

// BatchItem is the outcome of one batch entry. Exactly one of Image and Err
// is set.
type BatchItem struct {
	Path  string
	Image *Image
	Err   error
}

// BatchRunner applies the transform pipeline across a sequence of images,
// one at a time, isolating per-item failures. Per-item parallelism is not
// needed: each item's LUT pass already fans out across cores.
type BatchRunner struct {
	Decoder Decoder

	// Progress, when set, is called after every item.
	Progress func(BatchProgress)

	// Logger records per-item failures; nil uses slog.Default().
	Logger *slog.Logger

	// Mem supplies buffer allocation for decoded and derived images.
	Mem mem.Manager
}

// Run processes every path through the pipeline with the shared lut and
// cfg. A failing item is recorded in its BatchItem and the batch continues;
// only when no item at all succeeds does Run return ErrAllItemsFailed. An
// empty batch has zero successes and therefore fails too.
func (br *BatchRunner) Run(paths []string, lut *LutTable, cfg PipelineConfig) ([]BatchItem, error) {
	log := br.Logger
	if log == nil {
		log = slog.Default()
	}

	items := make([]BatchItem, 0, len(paths))
	succeeded := 0
	for i, path := range paths {
		img, err := br.runOne(path, lut, cfg)
		if err != nil {
			log.Warn("batch item failed", "path", path, "error", err)
			items = append(items, BatchItem{Path: path, Err: err})
		} else {
			succeeded++
			items = append(items, BatchItem{Path: path, Image: img})
		}
		if br.Progress != nil {
			br.Progress(BatchProgress{Index: i + 1, Total: len(paths), Path: path, Err: err})
		}
	}

	if succeeded == 0 {
		return items, ErrAllItemsFailed
	}
	return items, nil
}

func (br *BatchRunner) runOne(path string, lut *LutTable, cfg PipelineConfig) (*Image, error) {
	src, err := br.Decoder.Decode(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	p := &Pipeline{Logger: br.Logger, Mem: br.Mem}
	return p.Run(src, lut, cfg)
}

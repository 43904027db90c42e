package piclut

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/yzigangirova/piclut-go/mem"
)

// PipelineConfig configures one transform invocation. The zero value is not
// valid; callers usually start from DefaultConfig.
type PipelineConfig struct {
	// Strength blends the LUT result with the original: 1 is the full
	// effect, 0 the identity. Must be in [0,1].
	Strength float64

	// Mitigation selects the banding-mitigation strategy applied after
	// blending.
	Mitigation Mitigation

	// Seed makes the stochastic dither reproducible when non-zero.
	Seed int64

	// Workers bounds the row-parallel LUT pass; <= 0 means GOMAXPROCS.
	Workers int

	// DebandFallback forces the degraded bilateral smoothing mode of the
	// debanding filter. Only meaningful with MitigationDeband.
	DebandFallback bool
}

// DefaultConfig is a full-strength transform with no banding mitigation.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{Strength: 1.0, Mitigation: MitigationNone}
}

func (cfg PipelineConfig) validate() error {
	if cfg.Strength < 0 || cfg.Strength > 1 {
		return fmt.Errorf("piclut: strength %g out of range [0,1]", cfg.Strength)
	}
	if !cfg.Mitigation.Valid() {
		return fmt.Errorf("piclut: invalid banding mitigation %d", int(cfg.Mitigation))
	}
	return nil
}

// PipelineState tracks which stage a Pipeline run is in.
type PipelineState int32

const (
	StateIdle PipelineState = iota
	StateSampling
	StateBlending
	StateMitigating
	StateDone
	StateFailed
)

var pipelineStateNames = [...]string{
	"idle", "sampling", "blending", "mitigating", "done", "failed",
}

func (s PipelineState) String() string {
	if s >= 0 && int(s) < len(pipelineStateNames) {
		return pipelineStateNames[s]
	}
	return fmt.Sprintf("PipelineState(%d)", int32(s))
}

// Pipeline runs the single-image transform: LUT sampling, strength blend,
// then banding mitigation. Stages are strictly sequential; each stage's
// output image is fully materialized before the next begins. A Pipeline is
// cheap to construct and not reusable across concurrent runs; build one per
// invocation (the LutTable itself may be shared freely).
type Pipeline struct {
	// Logger receives stage notices (currently only the deband fallback).
	// Nil uses slog.Default().
	Logger *slog.Logger

	// Mem supplies buffer allocation for intermediate images.
	Mem mem.Manager

	state atomic.Int32
}

// State reports the current stage, safe to poll from another goroutine.
func (p *Pipeline) State() PipelineState {
	return PipelineState(p.state.Load())
}

func (p *Pipeline) setState(s PipelineState) {
	p.state.Store(int32(s))
}

// Run transforms src through lut under cfg and returns a new image of
// identical dimensions. Returns ErrUnloadedInput when src or lut is nil;
// stage errors propagate unchanged.
func (p *Pipeline) Run(src *Image, lut *LutTable, cfg PipelineConfig) (*Image, error) {
	if src == nil || lut == nil {
		p.setState(StateFailed)
		return nil, ErrUnloadedInput
	}
	if err := cfg.validate(); err != nil {
		p.setState(StateFailed)
		return nil, err
	}

	p.setState(StateSampling)
	transformed := lut.Map(p.Mem, src, cfg.Workers)

	p.setState(StateBlending)
	blended := Blend(p.Mem, src, transformed, cfg.Strength)

	p.setState(StateMitigating)
	out := p.mitigate(blended, cfg)

	p.setState(StateDone)
	return out, nil
}

func (p *Pipeline) mitigate(img *Image, cfg PipelineConfig) *Image {
	switch cfg.Mitigation {
	case MitigationOrdered:
		return OrderedDither(p.Mem, img)
	case MitigationNoise:
		return NoiseDither(p.Mem, img, cfg.Seed)
	case MitigationFloydSteinberg:
		return FloydSteinbergDither(p.Mem, img)
	case MitigationDeband:
		// Pre-dither with the blue-noise texture so the smoothing pass
		// has grain to spread, then run the edge-preserving filter.
		dithered := BlueNoiseDither(p.Mem, img, 2.0)
		return Deband(p.Mem, dithered, DebandOptions{
			DisableEdgePreserving: cfg.DebandFallback,
			Logger:                p.Logger,
		})
	default:
		return img
	}
}

package piclut

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the pipeline and batch layers.
var (
	// ErrUnloadedInput is returned by Pipeline.Run when the source image or
	// the LUT is missing.
	ErrUnloadedInput = errors.New("piclut: pipeline invoked without a source image or LUT")

	// ErrAllItemsFailed is returned by BatchRunner.Run when not a single
	// item of the batch could be processed.
	ErrAllItemsFailed = errors.New("piclut: all batch items failed")
)

// EncodingError reports a .cube file that is not valid UTF-8.
type EncodingError struct {
	Path string
	Line int
}

func (e *EncodingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cube: line %d is not valid UTF-8", e.Line)
	}
	return fmt.Sprintf("cube %q: line %d is not valid UTF-8", e.Path, e.Line)
}

// MissingSizeError reports a .cube file without a usable LUT_3D_SIZE
// directive. The lattice dimension must be at least 2.
type MissingSizeError struct {
	Path string
}

func (e *MissingSizeError) Error() string {
	if e.Path == "" {
		return "cube: missing or invalid LUT_3D_SIZE directive"
	}
	return fmt.Sprintf("cube %q: missing or invalid LUT_3D_SIZE directive", e.Path)
}

// SizeMismatchError reports a .cube file whose number of data values does not
// match the declared lattice size.
type SizeMismatchError struct {
	Path string
	Size int // declared lattice dimension N
	Want int // expected value count, N^3 * 3
	Got  int // values actually present
}

func (e *SizeMismatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cube: LUT_3D_SIZE %d needs %d values, file has %d", e.Size, e.Want, e.Got)
	}
	return fmt.Sprintf("cube %q: LUT_3D_SIZE %d needs %d values, file has %d", e.Path, e.Size, e.Want, e.Got)
}

// DecodeError wraps a failure of the external decode collaborator for one
// batch item. The underlying error is preserved for errors.Is/As.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

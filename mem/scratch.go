// SPDX-License-Identifier: MIT
package mem

import "sync"

// Scratch planes are reusable float32 working buffers for hot per-image
// paths (error diffusion, smoothing passes). They are pooled so that batch
// runs over many same-sized images do not reallocate per item.

var planePool = sync.Pool{
	New: func() any { return new([]float32) },
}

// GetPlane returns a float32 buffer of length n. Contents are undefined.
func GetPlane(n int) []float32 {
	p := planePool.Get().(*[]float32)
	if cap(*p) < n {
		*p = make([]float32, n)
	}
	return (*p)[:n]
}

// PutPlane returns a buffer obtained from GetPlane to the pool.
func PutPlane(p []float32) {
	planePool.Put(&p)
}

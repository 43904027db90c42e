//go:build goexperiment.arenas

// SPDX-License-Identifier: MIT
package mem

import "arena"

// Manager carries an optional arena. Pixel buffers for a single pipeline run
// can be arena-backed and released together with FreeAll.
type Manager struct {
	A *arena.Arena
}

// NewManager returns a Manager backed by a fresh arena.
func NewManager() Manager { return Manager{A: arena.NewArena()} }

func New[T any](m Manager) *T {
	if m.A == nil {
		return new(T)
	}
	return arena.New[T](m.A)
}

func MakeSlice[T any](m Manager, n int) []T {
	if m.A == nil {
		return make([]T, n)
	}
	return arena.MakeSlice[T](m.A, n, n)
}

// FreeAll releases the arena. The Manager must not be used afterwards.
func (m Manager) FreeAll() {
	if m.A != nil {
		m.A.Free()
	}
}

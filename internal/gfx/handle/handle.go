// Package handle provides typed, generation-checked resource handles and the
// slot pool that issues them.
//
// A Handle packs a slot index (low 24 bits) and a generation (high 8 bits)
// into a uint32. The zero value is the invalid sentinel. Freeing a slot bumps
// its generation, so handles captured before the free no longer resolve after
// the slot is reused.
package handle

import "fmt"

const (
	indexBits      = 24
	indexMask      = 1<<indexBits - 1
	generationMask = 0xFF

	// MaxIndex is the largest slot index a pool can hand out. The all-ones
	// index is never used so that no live handle can alias a corrupted one.
	MaxIndex = indexMask - 1
)

// Handle is an opaque reference to a slot in a Pool. Tag makes handles for
// different resource kinds distinct types.
type Handle[Tag any] struct {
	v uint32
}

// Invalid returns the sentinel handle for Tag.
func Invalid[Tag any]() Handle[Tag] {
	return Handle[Tag]{}
}

func makeHandle[Tag any](index int, generation uint8) Handle[Tag] {
	return Handle[Tag]{v: uint32(generation)<<indexBits | uint32(index)&indexMask}
}

// IsValid reports whether h is not the sentinel. A valid handle may still be
// stale; only the owning pool can tell.
func (h Handle[Tag]) IsValid() bool {
	return h.v != 0
}

// Index returns the slot index.
func (h Handle[Tag]) Index() int {
	return int(h.v & indexMask)
}

// Generation returns the slot generation the handle was issued for.
func (h Handle[Tag]) Generation() uint8 {
	return uint8(h.v >> indexBits & generationMask)
}

// Raw returns the packed value, for logging and command dumps.
func (h Handle[Tag]) Raw() uint32 {
	return h.v
}

// FromRaw rebuilds a handle from a packed value.
func FromRaw[Tag any](v uint32) Handle[Tag] {
	return Handle[Tag]{v: v}
}

func (h Handle[Tag]) String() string {
	if !h.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d@%d", h.Index(), h.Generation())
}

// nextGeneration advances g, skipping zero which marks a never-issued slot.
func nextGeneration(g uint8) uint8 {
	g++
	if g == 0 {
		g = 1
	}
	return g
}

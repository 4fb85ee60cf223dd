package gfx

import (
	"errors"

	"github.com/Faultbox/midgard-gfx/internal/gfx/handle"
)

// Pool errors, shared with the handle package.
var (
	ErrCapacity      = handle.ErrCapacity
	ErrInvalidHandle = handle.ErrInvalidHandle
	ErrStaleHandle   = handle.ErrStaleHandle
)

var (
	// ErrContract marks input the pipeline rejects at record or create time:
	// a negative perspective term, a vertex count that does not fit the
	// primitive type, too many lights, a malformed layout.
	ErrContract = errors.New("contract violation")

	// ErrDeviceLost is reported by a backend whose device became unusable.
	ErrDeviceLost = errors.New("device lost")

	// ErrResetTimeout is returned when a lost device did not become ready to
	// reset within the configured bound.
	ErrResetTimeout = errors.New("device reset timed out")

	// ErrUnregistered is returned when loading an identity nobody registered.
	ErrUnregistered = errors.New("resource not registered")

	// ErrNotLoaded is returned when a resource must already be loaded.
	ErrNotLoaded = errors.New("resource not loaded")
)

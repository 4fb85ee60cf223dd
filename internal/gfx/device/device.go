// Package device defines the backend contract of the pipeline and the
// executor that maps command lists onto a fixed-function native API.
package device

import (
	"context"
	"image"

	"github.com/Faultbox/midgard-gfx/internal/gfx"
	"github.com/Faultbox/midgard-gfx/internal/gfx/command"
)

// Device creates backend resources and executes command lists.
//
// A Device is used from the render goroutine only.
type Device interface {
	// AddMesh uploads interleaved vertex data in layout and returns a mesh
	// drawn as prim.
	AddMesh(data []byte, layout gfx.VertexLayout, prim gfx.PrimitiveType) (gfx.MeshHandle, error)
	// AddIndexedMesh is AddMesh with a 16-bit index stream.
	AddIndexedMesh(data []byte, layout gfx.VertexLayout, prim gfx.PrimitiveType, indices []uint16) (gfx.MeshHandle, error)
	Mesh(h gfx.MeshHandle) (gfx.Mesh, error)
	RemoveMesh(h gfx.MeshHandle) error

	// AddTexture decodes the image file at path and uploads it.
	AddTexture(path string) (gfx.TextureHandle, error)
	AddTextureImage(img image.Image) (gfx.TextureHandle, error)
	RemoveTexture(h gfx.TextureHandle) error

	CreatePipeline(desc gfx.PipelineDesc) (gfx.PipelineHandle, error)
	CreateSampler(desc gfx.SamplerDesc) (gfx.SamplerHandle, error)
	CreateVertexBuffer(desc gfx.VertexBufferDesc) (gfx.VertexBufferHandle, error)
	CreateIndexBuffer(desc gfx.IndexBufferDesc) (gfx.IndexBufferHandle, error)

	// Defaults returns the state every command list starts from.
	Defaults() gfx.DeviceDefaults

	// Execute runs list against the backend, bracketed by a reset to the
	// defaults before and a neutralization of lights, streams and textures
	// after.
	Execute(list *command.List) error

	// Present shows the backbuffer. A lost device is reset first.
	Present(ctx context.Context) error

	// Stats returns the counters of the last presented frame.
	Stats() Stats

	// RegisterExtension makes ext reachable from Extension commands.
	RegisterExtension(ext Extension) command.ExtensionID

	// OnReset registers an owner of transient native objects.
	OnReset(l ResetListener)

	// Close releases every resource the device created.
	Close() error
}

// Extension is device-side code run by an Extension command. It may issue
// any native calls; the bracket restores the defaults after the list.
type Extension interface {
	Draw(n Native, args [4]float32) error
}

// ResetListener owns native objects that do not survive a device reset.
type ResetListener interface {
	// DeviceLost is called before the native reset; release objects here.
	DeviceLost(n Native)
	// DeviceReset is called after a successful reset; recreate objects here.
	DeviceReset(n Native) error
}

// Stats are per-frame execution counters.
type Stats struct {
	Frame        uint64
	Lists        int
	Commands     int
	DrawCalls    int
	Primitives   int
	StateChanges int
	Dropped      int // lists dropped while the device was lost
}

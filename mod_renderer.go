package strata

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/strata3d/strata/voxel/chunk"
	"github.com/strata3d/strata/voxel/mesh"
)

// MeshHandle identifies one uploaded chunk mesh at the sink.
type MeshHandle string

func makeMeshHandle() MeshHandle {
	return MeshHandle(uuid.New().String())
}

// ChunkMeshUpload is everything a renderer needs to draw one chunk:
// geometry in chunk-local space plus the transform and bounds that place it
// in the world.
type ChunkMeshUpload struct {
	Coord     chunk.Coord
	Mesh      *mesh.Mesh
	Transform mgl32.Vec3
	Bounds    mesh.AABB
}

// MeshSink is where finished chunk meshes go. A GPU renderer uploads them
// into vertex buffers; the collector sink just keeps them. Calls only ever
// come from the driving goroutine.
type MeshSink interface {
	UploadChunkMesh(up ChunkMeshUpload) MeshHandle
	DiscardChunkMesh(handle MeshHandle)
}

// activeSink records which sink got installed so a second renderer module
// fails loudly instead of fighting over meshes.
type activeSink struct {
	name string
}

func ensureSingleSink(app *App, name string) {
	for _, r := range app.resources {
		if tag, ok := r.(*activeSink); ok {
			panic(fmt.Sprintf("Mesh sink %q already installed, cannot install %q", tag.name, name))
		}
	}
	app.addResources(&activeSink{name: name})
}

// RendererModule installs a mesh sink. Exactly one per app.
type RendererModule struct {
	Name string
	Sink MeshSink
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	if m.Sink == nil {
		panic("RendererModule needs a sink")
	}

	name := m.Name
	if name == "" {
		name = fmt.Sprintf("%T", m.Sink)
	}
	ensureSingleSink(app, name)
	cmd.AddResources(m.Sink)
	app.Logger().Infof("Mesh sink installed: %s", name)
}

// CollectorSink retains uploads in memory: the headless stand-in for a GPU
// renderer.
type CollectorSink struct {
	meshes   map[MeshHandle]ChunkMeshUpload
	uploads  int
	discards int
}

var _ MeshSink = (*CollectorSink)(nil)

func NewCollectorSink() *CollectorSink {
	return &CollectorSink{meshes: make(map[MeshHandle]ChunkMeshUpload)}
}

func (s *CollectorSink) UploadChunkMesh(up ChunkMeshUpload) MeshHandle {
	handle := makeMeshHandle()
	s.meshes[handle] = up
	s.uploads++
	return handle
}

func (s *CollectorSink) DiscardChunkMesh(handle MeshHandle) {
	if _, ok := s.meshes[handle]; !ok {
		return
	}
	delete(s.meshes, handle)
	s.discards++
}

// Held returns how many meshes the sink currently retains.
func (s *CollectorSink) Held() int { return len(s.meshes) }

// Uploads returns the lifetime upload count.
func (s *CollectorSink) Uploads() int { return s.uploads }

// Discards returns the lifetime discard count.
func (s *CollectorSink) Discards() int { return s.discards }

func (s *CollectorSink) Upload(handle MeshHandle) (ChunkMeshUpload, bool) {
	up, ok := s.meshes[handle]
	return up, ok
}

// Each visits the retained uploads in no particular order. Returning false
// stops the walk.
func (s *CollectorSink) Each(fn func(MeshHandle, ChunkMeshUpload) bool) {
	for handle, up := range s.meshes {
		if !fn(handle, up) {
			return
		}
	}
}

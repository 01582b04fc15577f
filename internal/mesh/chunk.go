// Package mesh builds per-material vertex chunks from host meshes and writes
// them as .m files with their JSON descriptors.
package mesh

import (
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/logger"
	"github.com/Faultbox/lite3d-exporter/pkg/formats"
	lmath "github.com/Faultbox/lite3d-exporter/pkg/math"
)

// MaxBoneInfluences is the number of bone index/weight pairs stored per vertex.
const MaxBoneInfluences = 4

// closeRelTol is the relative tolerance used to compare normals.
const closeRelTol = 1e-9

// Options selects the vertex attributes and index mode of every chunk in a mesh.
type Options struct {
	Tangent   bool
	Bitangent bool
	Colors    bool
	Skeleton  bool
	Indexed   bool
	FlipUV    bool
}

// Layout returns the vertex layout the options describe, in file order.
func (o Options) Layout() []formats.MLayout {
	layout := []formats.MLayout{
		{Binding: formats.BindingVertex, Count: 3},
		{Binding: formats.BindingNormal, Count: 3},
		{Binding: formats.BindingTexCoord, Count: 2},
	}
	if o.Tangent {
		layout = append(layout, formats.MLayout{Binding: formats.BindingTangent, Count: 3})
	}
	if o.Bitangent {
		layout = append(layout, formats.MLayout{Binding: formats.BindingBinormal, Count: 3})
	}
	if o.Colors {
		layout = append(layout, formats.MLayout{Binding: formats.BindingColor, Count: 4})
	}
	if o.Skeleton {
		layout = append(layout,
			formats.MLayout{Binding: formats.BindingBoneIndex, Count: MaxBoneInfluences},
			formats.MLayout{Binding: formats.BindingBoneWeight, Count: MaxBoneInfluences},
		)
	}
	return layout
}

// RecordSize returns the byte size of one vertex record.
func (o Options) RecordSize() int {
	size := 0
	for _, l := range o.Layout() {
		size += int(l.Count) * 4
	}
	return size
}

// VertexInput is one polygon corner as fed to a chunk.
type VertexInput struct {
	Position  [3]float32
	Normal    [3]float32
	UV        [2]float32
	Tangent   [3]float32
	Bitangent [3]float32
	Color     [4]float32
	Bones     [MaxBoneInfluences]int32
	Weights   [MaxBoneInfluences]float32
}

type split struct {
	normal [3]float32
	slot   uint32
}

// Chunk holds the vertices and indices of one material index within a mesh.
type Chunk struct {
	MaterialIndex int

	opts       Options
	layout     []formats.MLayout
	recordSize int

	vertices    []byte
	vertexCount int
	indices     []uint32
	splits      map[int][]split

	min lmath.Vec3
	max lmath.Vec3
}

// NewChunk creates an empty chunk for materialIndex.
func NewChunk(materialIndex int, opts Options) *Chunk {
	return &Chunk{
		MaterialIndex: materialIndex,
		opts:          opts,
		layout:        opts.Layout(),
		recordSize:    opts.RecordSize(),
		splits:        make(map[int][]split),
		min:           lmath.Vec3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		max:           lmath.Vec3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

// AppendVertex adds one polygon corner. id identifies the source vertex
// within the mesh; in indexed mode corners sharing id and a near-equal
// normal share one vertex record.
func (c *Chunk) AppendVertex(id int, v VertexInput) {
	c.grow(v.Position)

	if !c.opts.Indexed {
		c.writeRecord(v)
		return
	}

	for _, s := range c.splits[id] {
		if normalsClose(s.normal, v.Normal) {
			c.indices = append(c.indices, s.slot)
			return
		}
	}

	slot := uint32(c.vertexCount)
	c.writeRecord(v)
	c.splits[id] = append(c.splits[id], split{normal: v.Normal, slot: slot})
	c.indices = append(c.indices, slot)
}

func (c *Chunk) grow(p [3]float32) {
	c.min.X = min(c.min.X, p[0])
	c.min.Y = min(c.min.Y, p[1])
	c.min.Z = min(c.min.Z, p[2])
	c.max.X = max(c.max.X, p[0])
	c.max.Y = max(c.max.Y, p[1])
	c.max.Z = max(c.max.Z, p[2])
}

func (c *Chunk) writeRecord(v VertexInput) {
	uv := v.UV
	if c.opts.FlipUV {
		uv[1] = 1 - uv[1]
	}

	b := c.vertices
	b = appendFloats(b, v.Position[:]...)
	b = appendFloats(b, v.Normal[:]...)
	b = appendFloats(b, uv[:]...)
	if c.opts.Tangent {
		b = appendFloats(b, v.Tangent[:]...)
	}
	if c.opts.Bitangent {
		b = appendFloats(b, v.Bitangent[:]...)
	}
	if c.opts.Colors {
		b = appendFloats(b, v.Color[:]...)
	}
	if c.opts.Skeleton {
		for _, bone := range v.Bones {
			b = binary.NativeEndian.AppendUint32(b, uint32(bone))
		}
		b = appendFloats(b, v.Weights[:]...)
	}
	c.vertices = b
	c.vertexCount++
}

func appendFloats(b []byte, fs ...float32) []byte {
	for _, f := range fs {
		b = binary.NativeEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// normalsClose compares each axis with a purely relative tolerance.
func normalsClose(a, b [3]float32) bool {
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		if math.Abs(x-y) > closeRelTol*math.Max(math.Abs(x), math.Abs(y)) {
			return false
		}
	}
	return true
}

// VertexCount returns the number of emitted vertex records.
func (c *Chunk) VertexCount() int { return c.vertexCount }

// IndexCount returns the number of emitted indices.
func (c *Chunk) IndexCount() int { return len(c.indices) }

// Indices returns the index array.
func (c *Chunk) Indices() []uint32 { return c.indices }

// VertexSize returns the byte size of the vertex block.
func (c *Chunk) VertexSize() int { return len(c.vertices) }

// IndexSize returns the byte size of the index block.
func (c *Chunk) IndexSize() int { return len(c.indices) * formats.MIndexElementSize }

// Min returns the smallest position seen on each axis.
func (c *Chunk) Min() lmath.Vec3 { return c.min }

// Max returns the largest position seen on each axis.
func (c *Chunk) Max() lmath.Vec3 { return c.max }

// Layout returns the chunk's vertex layout.
func (c *Chunk) Layout() []formats.MLayout { return c.layout }

// RecordSize returns the byte size of one vertex record.
func (c *Chunk) RecordSize() int { return c.recordSize }

// Bounds returns the bounding box corners and bounding sphere.
//
// The last corner is max itself rather than min plus the extents.
func (c *Chunk) Bounds() formats.MBoundingVolume {
	mn, mx := c.min, c.max
	ext := mx.Sub(mn)
	l, w, h := ext.X, ext.Y, ext.Z
	half := ext.Scale(0.5)

	return formats.MBoundingVolume{
		Box: [8][3]float32{
			{mn.X, mn.Y, mn.Z},
			{mn.X, mn.Y, mn.Z + h},
			{mn.X, mn.Y + w, mn.Z + h},
			{mn.X, mn.Y + w, mn.Z},
			{mn.X + l, mn.Y, mn.Z},
			{mn.X + l, mn.Y, mn.Z + h},
			{mn.X + l, mn.Y + w, mn.Z},
			{mx.X, mx.Y, mx.Z},
		},
		SphereCenter: mn.Add(half).Array(),
		SphereRadius: half.Length(),
	}
}

// Record returns the chunk record for the given section offsets.
func (c *Chunk) Record(vertexOffset, indexOffset int) formats.MChunk {
	return formats.MChunk{
		Header: formats.MChunkHeader{
			HeaderSize:       int32(formats.MChunkRecordSize(len(c.layout))),
			LayoutCount:      int32(len(c.layout)),
			IndexCount:       int32(len(c.indices)),
			IndexSize:        int32(c.IndexSize()),
			IndexOffset:      int32(indexOffset),
			VertexCount:      int32(c.vertexCount),
			VertexSize:       int32(len(c.vertices)),
			VertexOffset:     int32(vertexOffset),
			IndexElementSize: formats.MIndexElementSize,
			MaterialIndex:    uint32(c.MaterialIndex),
		},
		Bounds: c.Bounds(),
		Layout: c.layout,
	}
}

// VertexBytes returns the encoded vertex block.
func (c *Chunk) VertexBytes() []byte { return c.vertices }

// IndexBytes returns the encoded index block.
func (c *Chunk) IndexBytes() []byte {
	b := make([]byte, 0, c.IndexSize())
	for _, i := range c.indices {
		b = binary.NativeEndian.AppendUint32(b, i)
	}
	return b
}

func (c *Chunk) logStats(mesh string) {
	logger.Debug("chunk",
		zap.String("mesh", mesh),
		zap.Int("material", c.MaterialIndex),
		zap.Int("vertices", c.vertexCount),
		zap.Int("indices", len(c.indices)),
		zap.Int("vertex_bytes", len(c.vertices)),
		zap.Int("record", c.recordSize),
	)
}

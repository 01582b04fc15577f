package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/assets"
	"github.com/Faultbox/lite3d-exporter/internal/config"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
	"github.com/Faultbox/lite3d-exporter/pkg/formats"
)

// Mesh errors.
var (
	ErrNotTriangulated = errors.New("mesh is not triangulated")
	ErrBadTopology     = errors.New("polygon references a missing loop or vertex")
)

// PartitionProperty is the mesh custom property naming its buffer partition.
const PartitionProperty = "Partition"

// Codec is the descriptor codec tag of .m files.
const Codec = "m"

// OptionsFromConfig derives chunk options from mesh settings.
func OptionsFromConfig(cfg config.MeshConfig) Options {
	return Options{
		Tangent:   cfg.SaveTangent,
		Bitangent: cfg.SaveBiTangent,
		Colors:    cfg.VertexColors,
		Skeleton:  cfg.Skeleton,
		Indexed:   cfg.SaveIndexes,
		FlipUV:    cfg.FlipUV,
	}
}

// Asset is a mesh split into per-material chunks.
type Asset struct {
	Source *host.Mesh
	chunks map[int]*Chunk
}

// Build feeds every triangle of src into the chunk of its material index.
// Vertex colors are only written when the mesh has a color attribute.
func Build(src *host.Mesh, opts Options) (*Asset, error) {
	if opts.Colors && !src.HasColors() {
		opts.Colors = false
	}
	if opts.Skeleton && !src.HasGroups() {
		opts.Skeleton = false
	}

	a := &Asset{Source: src, chunks: make(map[int]*Chunk)}
	for pi, poly := range src.Polygons {
		if poly.LoopTotal != 3 {
			return nil, fmt.Errorf("%w: mesh %q polygon %d has %d vertices",
				ErrNotTriangulated, src.Name, pi, poly.LoopTotal)
		}

		chunk, ok := a.chunks[poly.MaterialIndex]
		if !ok {
			chunk = NewChunk(poly.MaterialIndex, opts)
			a.chunks[poly.MaterialIndex] = chunk
		}

		for li := poly.LoopStart; li < poly.LoopStart+poly.LoopTotal; li++ {
			if li < 0 || li >= len(src.Loops) {
				return nil, fmt.Errorf("%w: mesh %q polygon %d loop %d", ErrBadTopology, src.Name, pi, li)
			}
			loop := src.Loops[li]
			if loop.Vertex < 0 || loop.Vertex >= len(src.Vertices) {
				return nil, fmt.Errorf("%w: mesh %q loop %d vertex %d", ErrBadTopology, src.Name, li, loop.Vertex)
			}
			chunk.AppendVertex(loop.Vertex, vertexInput(src, loop, opts))
		}
	}
	return a, nil
}

func vertexInput(src *host.Mesh, loop host.Loop, opts Options) VertexInput {
	vert := src.Vertices[loop.Vertex]
	in := VertexInput{
		Position:  vert.Co,
		Normal:    loop.Normal,
		UV:        loop.UV,
		Tangent:   loop.Tangent,
		Bitangent: loop.Bitangent,
	}
	if opts.Colors {
		in.Color = src.Colors[loop.Vertex]
	}
	for i := 0; i < MaxBoneInfluences; i++ {
		if i < len(vert.Groups) {
			in.Bones[i] = vert.Groups[i].Group
			in.Weights[i] = vert.Groups[i].Weight
		} else {
			in.Bones[i] = -1
		}
	}
	return in
}

// Name returns the engine-side mesh name.
func (a *Asset) Name() string {
	return a.Source.Name + ".mesh"
}

// ModelPath returns the asset-relative path of the .m file.
func (a *Asset) ModelPath() string {
	return path.Join("models/meshes", a.Source.Name+".m")
}

// DescriptorPath returns the asset-relative path of the mesh JSON.
func (a *Asset) DescriptorPath() string {
	return path.Join("models/json", a.Source.Name+".json")
}

// Chunks returns the chunks in ascending material index order.
func (a *Asset) Chunks() []*Chunk {
	keys := make([]int, 0, len(a.chunks))
	for k := range a.chunks {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]*Chunk, len(keys))
	for i, k := range keys {
		out[i] = a.chunks[k]
	}
	return out
}

// Header returns the file header for the current chunks.
func (a *Asset) Header(version formats.MVersion) formats.MHeader {
	h := formats.MHeader{
		Signature:  formats.MSignature,
		Version:    version.Packed(),
		ChunkCount: int32(len(a.chunks)),
	}
	for _, c := range a.chunks {
		h.ChunkSectionSize += int32(formats.MChunkRecordSize(len(c.Layout())))
		h.VertexSectionSize += int32(c.VertexSize())
		h.IndexSectionSize += int32(c.IndexSize())
	}
	return h
}

// WriteM writes the .m file: header, chunk records, every vertex block,
// then every index block when there are indices.
func (a *Asset) WriteM(w *bufio.Writer, version formats.MVersion) (formats.MHeader, error) {
	h := a.Header(version)
	if err := formats.WriteMHeader(w, h); err != nil {
		return h, fmt.Errorf("writing header: %w", err)
	}

	chunks := a.Chunks()
	vertexOffset, indexOffset := 0, 0
	for _, c := range chunks {
		rec := c.Record(vertexOffset, indexOffset)
		if err := formats.WriteMChunk(w, &rec); err != nil {
			return h, err
		}
		vertexOffset += c.VertexSize()
		indexOffset += c.IndexSize()
	}

	for _, c := range chunks {
		if _, err := w.Write(c.VertexBytes()); err != nil {
			return h, fmt.Errorf("writing vertex block: %w", err)
		}
	}

	if h.IndexSectionSize > 0 {
		for _, c := range chunks {
			if _, err := w.Write(c.IndexBytes()); err != nil {
				return h, fmt.Errorf("writing index block: %w", err)
			}
		}
	}
	return h, w.Flush()
}

// MaterialRef is a resolved material as referenced from a mesh descriptor.
type MaterialRef struct {
	Type     string
	Name     string
	Material string
}

// MaterialResolver exports a material once and returns its reference.
type MaterialResolver interface {
	ResolveMaterial(m *host.Material) (MaterialRef, error)
}

// MaterialMapping binds a chunk's material index to a material.
type MaterialMapping struct {
	Material      MaterialRef
	MaterialIndex int
}

// Descriptor is the mesh JSON document.
type Descriptor struct {
	Codec           string
	Model           string
	Partition       string            `json:",omitempty"`
	MaterialMapping []MaterialMapping `json:",omitempty"`
}

// SaveOptions controls where and how a mesh is saved.
type SaveOptions struct {
	Layout          assets.Layout
	Version         formats.MVersion
	Scene           string // Used for the single partition name
	SinglePartition bool
	Materials       MaterialResolver
}

// Partition returns the mesh's partition tag, or "" for none.
func (a *Asset) Partition(scene string, single bool) string {
	if p, ok := a.Source.Properties.String(PartitionProperty); ok {
		return p
	}
	if single {
		return scene + ".mesh_partition"
	}
	return ""
}

// Save writes the mesh descriptor and the .m file.
func (a *Asset) Save(opts SaveOptions) error {
	desc := Descriptor{
		Codec:     Codec,
		Model:     opts.Layout.QualifiedMesh(a.ModelPath()),
		Partition: a.Partition(opts.Scene, opts.SinglePartition),
	}

	if len(a.Source.MaterialSlots) > 0 && opts.Materials != nil {
		for _, c := range a.Chunks() {
			if c.MaterialIndex < 0 || c.MaterialIndex >= len(a.Source.MaterialSlots) {
				continue
			}
			mat := a.Source.MaterialSlots[c.MaterialIndex]
			if mat == nil {
				continue
			}
			ref, err := opts.Materials.ResolveMaterial(mat)
			if err != nil {
				return fmt.Errorf("mesh %q material %q: %w", a.Source.Name, mat.Name, err)
			}
			desc.MaterialMapping = append(desc.MaterialMapping, MaterialMapping{
				Material:      ref,
				MaterialIndex: c.MaterialIndex,
			})
		}
	}

	if err := opts.Layout.WriteJSON(a.DescriptorPath(), desc); err != nil {
		return err
	}
	return a.saveModel(opts.Layout, opts.Version)
}

func (a *Asset) saveModel(layout assets.Layout, version formats.MVersion) error {
	p, err := layout.SysPath(a.ModelPath())
	if err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("creating %s: %w", p, err)
	}
	defer f.Close()

	h, err := a.WriteM(bufio.NewWriter(f), version)
	if err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", p, err)
	}

	logger.Info("saved ok",
		zap.String("path", p),
		zap.Int32("vertex_bytes", h.VertexSectionSize),
		zap.Int32("index_bytes", h.IndexSectionSize),
	)
	logger.Debug("mesh", zap.String("name", a.Name()), zap.Int("chunks", len(a.chunks)))
	for _, c := range a.Chunks() {
		c.logStats(a.Name())
	}
	return nil
}

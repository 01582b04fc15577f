package mesh

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lite3d-exporter/internal/assets"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/pkg/formats"
)

// makeMesh builds a mesh of separate triangles, one per entry of materials.
func makeMesh(materials []int) *host.Mesh {
	m := &host.Mesh{Name: "Cube"}
	for i, mat := range materials {
		base := len(m.Vertices)
		f := float32(i)
		m.Vertices = append(m.Vertices,
			host.MeshVertex{Co: [3]float32{f, 0, 0}, Groups: []host.GroupWeight{{Group: 1, Weight: 0.5}}},
			host.MeshVertex{Co: [3]float32{f + 1, 0, 0}},
			host.MeshVertex{Co: [3]float32{f, 1, -f}},
		)
		for j := 0; j < 3; j++ {
			m.Loops = append(m.Loops, host.Loop{
				Vertex: base + j,
				Normal: [3]float32{0, 0, 1},
				UV:     [2]float32{float32(j) / 2, 0.5},
			})
		}
		m.Polygons = append(m.Polygons, host.Polygon{LoopStart: i * 3, LoopTotal: 3, MaterialIndex: mat})
	}
	return m
}

type stubResolver struct {
	calls []string
}

func (r *stubResolver) ResolveMaterial(m *host.Material) (MaterialRef, error) {
	r.calls = append(r.calls, m.Name)
	return MaterialRef{Type: "PBR", Name: m.Name + ".material", Material: "pkg:materials/" + m.Name + ".json"}, nil
}

func TestBuildRejectsNGon(t *testing.T) {
	m := makeMesh([]int{0})
	m.Polygons[0].LoopTotal = 4
	m.Loops = append(m.Loops, m.Loops[0])

	_, err := Build(m, Options{})
	if !errors.Is(err, ErrNotTriangulated) {
		t.Errorf("expected ErrNotTriangulated, got %v", err)
	}
}

func TestBuildBadTopology(t *testing.T) {
	m := makeMesh([]int{0})
	m.Loops[1].Vertex = 99

	_, err := Build(m, Options{})
	if !errors.Is(err, ErrBadTopology) {
		t.Errorf("expected ErrBadTopology, got %v", err)
	}
}

func TestBuildChunksByMaterial(t *testing.T) {
	a, err := Build(makeMesh([]int{2, 0, 2}), Options{Indexed: true})
	require.NoError(t, err)

	chunks := a.Chunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].MaterialIndex)
	assert.Equal(t, 2, chunks[1].MaterialIndex)
	assert.Equal(t, 3, chunks[0].VertexCount())
	assert.Equal(t, 6, chunks[1].VertexCount())
}

func TestBuildColorsNeedAttribute(t *testing.T) {
	a, err := Build(makeMesh([]int{0}), Options{Colors: true})
	require.NoError(t, err)
	assert.Equal(t, 32, a.Chunks()[0].RecordSize())
}

func TestBuildSkeletonNeedsGroups(t *testing.T) {
	a, err := Build(makeMesh([]int{0}), Options{Skeleton: true})
	require.NoError(t, err)
	assert.Equal(t, 64, a.Chunks()[0].RecordSize())

	m := makeMesh([]int{0})
	m.Vertices[0].Groups = nil
	a, err = Build(m, Options{Skeleton: true})
	require.NoError(t, err)
	assert.Equal(t, 32, a.Chunks()[0].RecordSize())
}

func TestWriteMRoundTrip(t *testing.T) {
	configs := []Options{
		{Indexed: true},
		{Indexed: true, Tangent: true, Bitangent: true},
		{},
		{Indexed: true, Skeleton: true, FlipUV: true},
		{Tangent: true, Skeleton: true},
	}

	for n := 1; n <= 5; n++ {
		opts := configs[n-1]
		t.Run(fmt.Sprintf("%d chunks", n), func(t *testing.T) {
			var materials []int
			for i := 0; i < n; i++ {
				// Two triangles per material, added in descending order.
				materials = append(materials, n-1-i, n-1-i)
			}
			a, err := Build(makeMesh(materials), opts)
			require.NoError(t, err)

			var buf bytes.Buffer
			h, err := a.WriteM(bufio.NewWriter(&buf), formats.DefaultMVersion)
			require.NoError(t, err)

			m, err := formats.ParseM(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, h, m.Header)
			require.Len(t, m.Chunks, n)

			vertexBytes, indexBytes := 0, 0
			vertexOffset, indexOffset := 0, 0
			for i, c := range a.Chunks() {
				got := m.Chunks[i]
				want := c.Record(vertexOffset, indexOffset)
				assert.Equal(t, want.Header, got.Header)
				assert.Equal(t, want.Layout, got.Layout)
				assert.Equal(t, want.Bounds, got.Bounds)
				assert.Equal(t, c.Indices(), nilIfEmpty(m.IndicesOf(i)))

				vertexBytes += int(got.Header.VertexCount) * c.RecordSize()
				indexBytes += int(got.Header.IndexCount) * 4
				vertexOffset += c.VertexSize()
				indexOffset += c.IndexSize()
			}
			assert.Equal(t, vertexBytes, int(m.Header.VertexSectionSize))
			assert.Equal(t, indexBytes, int(m.Header.IndexSectionSize))
			if !opts.Indexed {
				assert.Zero(t, m.Header.IndexSectionSize)
			}
		})
	}
}

func nilIfEmpty(s []uint32) []uint32 {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestSave(t *testing.T) {
	src := makeMesh([]int{1, 0, 2})
	src.Materials = []string{"Red", "", "Blue"}
	src.MaterialSlots = []*host.Material{{Name: "Red"}, nil, {Name: "Blue"}}
	src.Properties = host.Properties{PartitionProperty: "statics"}

	a, err := Build(src, Options{Indexed: true})
	require.NoError(t, err)

	layout := assets.Layout{Root: t.TempDir(), Packages: assets.Packages{Generic: "pkg", Image: "img", Mesh: "meshes"}}
	resolver := &stubResolver{}
	require.NoError(t, a.Save(SaveOptions{
		Layout:    layout,
		Version:   formats.DefaultMVersion,
		Scene:     "Scene",
		Materials: resolver,
	}))
	assert.Equal(t, []string{"Red", "Blue"}, resolver.calls)

	data, err := os.ReadFile(filepath.Join(layout.Root, "models", "json", "Cube.json"))
	require.NoError(t, err)
	var desc Descriptor
	require.NoError(t, json.Unmarshal(data, &desc))
	assert.Equal(t, "m", desc.Codec)
	assert.Equal(t, "meshes:models/meshes/Cube.m", desc.Model)
	assert.Equal(t, "statics", desc.Partition)
	require.Len(t, desc.MaterialMapping, 2)
	assert.Equal(t, 0, desc.MaterialMapping[0].MaterialIndex)
	assert.Equal(t, "Red.material", desc.MaterialMapping[0].Material.Name)
	assert.Equal(t, 2, desc.MaterialMapping[1].MaterialIndex)
	assert.Equal(t, "pkg:materials/Blue.json", desc.MaterialMapping[1].Material.Material)

	model, err := os.ReadFile(filepath.Join(layout.Root, "models", "meshes", "Cube.m"))
	require.NoError(t, err)
	m, err := formats.ParseM(model)
	require.NoError(t, err)
	assert.Len(t, m.Chunks, 3)
}

func TestSaveWithoutMaterials(t *testing.T) {
	a, err := Build(makeMesh([]int{0}), Options{})
	require.NoError(t, err)

	layout := assets.Layout{Root: t.TempDir(), Packages: assets.Packages{Generic: "pkg", Image: "img", Mesh: "meshes"}}
	require.NoError(t, a.Save(SaveOptions{Layout: layout, Version: formats.DefaultMVersion, Scene: "Level", SinglePartition: true}))

	data, err := os.ReadFile(filepath.Join(layout.Root, "models", "json", "Cube.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Codec":"m","Model":"meshes:models/meshes/Cube.m","Partition":"Level.mesh_partition"}`, string(data))
}

func TestAssetNames(t *testing.T) {
	a := &Asset{Source: &host.Mesh{Name: "Rock"}}
	assert.Equal(t, "Rock.mesh", a.Name())
	assert.Equal(t, "models/meshes/Rock.m", a.ModelPath())
	assert.Equal(t, "models/json/Rock.json", a.DescriptorPath())
	assert.Equal(t, "", a.Partition("S", false))
}

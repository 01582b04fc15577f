package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `
name: warship
base_dir: /projects/warship
objects:
  - name: Hull
    type: MESH
    data: HullMesh
    location: [1, 2, 3]
    rotation_quaternion: [0, 0, 0, 1]
    properties:
      Partition: ships
  - name: Turret
    type: MESH
    parent: Hull
    data: HullMesh
  - name: Lamp
    type: LIGHT
    data: LampLight
    parent: Hull
  - name: Rig
    type: ARMATURE
    data: RigData
meshes:
  - name: HullMesh
    vertices:
      - co: [0, 0, 0]
      - co: [1, 0, 0]
      - co: [0, 1, 0]
    loops:
      - {vertex: 0, normal: [0, 0, 1], uv: [0, 0]}
      - {vertex: 1, normal: [0, 0, 1], uv: [1, 0]}
      - {vertex: 2, normal: [0, 0, 1], uv: [0, 1]}
    polygons:
      - {loop_start: 0, loop_total: 3, material_index: 0}
    materials: [Steel, ""]
materials:
  - name: Steel
    nodes:
      - name: Image Texture
        label: Albedo
        type: TEX_IMAGE
        image: steel.png
images:
  - name: steel.png
    filepath: //textures/steel.png
lights:
  - name: LampLight
    type: SPOT
    color: [1, 0.5, 0.25]
    energy: 100
    spot_size: 0.8
    spot_blend: 0.25
armatures:
  - name: RigData
    bones:
      - {name: Root, length: 2}
      - {name: Arm, parent: Root, length: 1}
      - {name: Leg, parent: Root, length: 1}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	assert.Equal(t, "warship", s.Name)

	roots := s.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "Hull", roots[0].Name)
	assert.Equal(t, "Rig", roots[1].Name)

	hull := roots[0]
	require.Len(t, hull.Children, 2)
	assert.Equal(t, "Turret", hull.Children[0].Name)
	assert.Same(t, hull.Mesh, hull.Children[0].Mesh, "instances share one mesh block")
	assert.Nil(t, hull.Scale)
	_, _, hullScale := hull.Orientation()
	assert.Equal(t, [3]float32{1, 1, 1}, hullScale.Array(), "missing scale defaults to one")

	lamp := hull.Children[1]
	require.NotNil(t, lamp.Light)
	assert.Equal(t, float32(0.8), lamp.Light.SpotSize)

	mesh, ok := s.Mesh("HullMesh")
	require.True(t, ok)
	require.Len(t, mesh.MaterialSlots, 2)
	assert.Equal(t, "Steel", mesh.MaterialSlots[0].Name)
	assert.Nil(t, mesh.MaterialSlots[1])

	steel := mesh.MaterialSlots[0]
	require.NotNil(t, steel.Nodes[0].ImageRef)
	assert.Equal(t, "//textures/steel.png", steel.Nodes[0].ImageRef.FilePath)

	rig := roots[1].Armature
	require.NotNil(t, rig)
	require.Len(t, rig.RootBones(), 1)
	assert.Len(t, rig.RootBones()[0].Children, 2)

	partition, ok := hull.Properties.String("Partition")
	assert.True(t, ok)
	assert.Equal(t, "ships", partition)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "missing parent",
			yaml: `
objects:
  - {name: A, type: EMPTY, parent: Nope}
`,
			wantErr: ErrUnresolved,
		},
		{
			name: "missing mesh",
			yaml: `
objects:
  - {name: A, type: MESH, data: Nope}
`,
			wantErr: ErrUnresolved,
		},
		{
			name: "mesh without data",
			yaml: `
objects:
  - {name: A, type: MESH}
`,
			wantErr: ErrUnknownDataBlock,
		},
		{
			name: "duplicate object",
			yaml: `
objects:
  - {name: A, type: EMPTY}
  - {name: A, type: EMPTY}
`,
			wantErr: ErrDuplicateName,
		},
		{
			name: "parent cycle",
			yaml: `
objects:
  - {name: A, type: EMPTY, parent: B}
  - {name: B, type: EMPTY, parent: A}
`,
			wantErr: ErrCyclicHierarchy,
		},
		{
			name: "missing material",
			yaml: `
meshes:
  - {name: M, materials: [Nope]}
`,
			wantErr: ErrUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOrientation(t *testing.T) {
	o := &Object{
		Location:      [3]float32{1, 2, 3},
		RotationEuler: [3]float32{0, 0, 0},
		Scale:         &[3]float32{2, 2, 2},
	}
	pos, rot, scale := o.Orientation()
	assert.Equal(t, [3]float32{1, 2, 3}, pos.Array())
	assert.InDelta(t, 1.0, float64(rot.W), 1e-6)
	assert.Equal(t, [3]float32{2, 2, 2}, scale.Array())

	o.Rotation = &[4]float32{0.5, 0.5, 0.5, 0.5}
	_, rot, _ = o.Orientation()
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 0.5}, rot.Array())
}

func TestZeroScaleIsKept(t *testing.T) {
	s, err := Parse([]byte(`
name: flat
objects:
  - name: Squashed
    type: EMPTY
    scale: [0, 0, 0]
  - name: Plain
    type: EMPTY
`))
	require.NoError(t, err)

	_, _, squashed := s.Objects[0].Orientation()
	assert.Equal(t, [3]float32{0, 0, 0}, squashed.Array())
	_, _, plain := s.Objects[1].Orientation()
	assert.Equal(t, [3]float32{1, 1, 1}, plain.Array())
}

func TestProperties(t *testing.T) {
	p := Properties{
		"int":    3,
		"float":  0.5,
		"string": "BOX",
		"bool":   true,
		"vec":    []any{1, 2.5, 3},
		"badvec": []any{1, "x", 3},
	}

	f, ok := p.Float("int")
	assert.True(t, ok)
	assert.Equal(t, float32(3), f)
	assert.Equal(t, float32(0.5), p.FloatOr("float", 9))
	assert.Equal(t, float32(9), p.FloatOr("missing", 9))

	s, ok := p.String("string")
	assert.True(t, ok)
	assert.Equal(t, "BOX", s)
	_, ok = p.String("int")
	assert.False(t, ok)

	assert.True(t, p.BoolOr("bool", false))
	assert.True(t, p.BoolOr("missing", true))

	v, ok := p.Vec3("vec")
	assert.True(t, ok)
	assert.Equal(t, [3]float32{1, 2.5, 3}, v)
	_, ok = p.Vec3("badvec")
	assert.False(t, ok)
}

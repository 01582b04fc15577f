package host

// Mesh is a triangulated mesh data block with loop-split normals and tangents.
type Mesh struct {
	Name       string       `yaml:"name"`
	Vertices   []MeshVertex `yaml:"vertices"`
	Loops      []Loop       `yaml:"loops"`
	Polygons   []Polygon    `yaml:"polygons"`
	Colors     [][4]float32 `yaml:"colors"`    // First color attribute, per vertex
	Materials  []string     `yaml:"materials"` // Slot index to material name, "" for an empty slot
	Properties Properties   `yaml:"properties"`

	MaterialSlots []*Material `yaml:"-"`
}

// MeshVertex is a shared vertex position with its skinning groups.
type MeshVertex struct {
	Co     [3]float32    `yaml:"co"`
	Groups []GroupWeight `yaml:"groups"`
}

// GroupWeight is a vertex group (bone) influence.
type GroupWeight struct {
	Group  int32   `yaml:"group"`
	Weight float32 `yaml:"weight"`
}

// Loop is one polygon corner.
type Loop struct {
	Vertex    int        `yaml:"vertex"`
	Normal    [3]float32 `yaml:"normal"`
	Tangent   [3]float32 `yaml:"tangent"`
	Bitangent [3]float32 `yaml:"bitangent"`
	UV        [2]float32 `yaml:"uv"`
}

// Polygon is a face as a run of loops.
type Polygon struct {
	LoopStart     int `yaml:"loop_start"`
	LoopTotal     int `yaml:"loop_total"`
	MaterialIndex int `yaml:"material_index"`
}

// HasColors reports whether the mesh carries a vertex color attribute.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0 && len(m.Colors) == len(m.Vertices)
}

// HasGroups reports whether any vertex has a group influence.
func (m *Mesh) HasGroups() bool {
	for _, v := range m.Vertices {
		if len(v.Groups) > 0 {
			return true
		}
	}
	return false
}

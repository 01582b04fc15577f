// Package host defines the read-only snapshot of a modeling-host scene that
// the exporter consumes. A host-side dumper captures the scene once; nothing
// here is mutated after Resolve.
package host

import (
	"errors"
	"fmt"

	"github.com/Faultbox/lite3d-exporter/pkg/math"
)

// Snapshot errors.
var (
	ErrUnresolved       = errors.New("unresolved reference")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrCyclicHierarchy  = errors.New("cyclic parent hierarchy")
	ErrUnknownDataBlock = errors.New("object type has no data block")
)

// ObjectType is the host object type tag.
type ObjectType string

// Object types known to the exporter.
const (
	TypeMesh     ObjectType = "MESH"
	TypeLight    ObjectType = "LIGHT"
	TypeEmpty    ObjectType = "EMPTY"
	TypeArmature ObjectType = "ARMATURE"
	TypeCamera   ObjectType = "CAMERA"
)

// Scene is a snapshot of one host scene.
type Scene struct {
	Name      string      `yaml:"name"`
	BaseDir   string      `yaml:"base_dir"` // Host file directory, resolves "//" paths
	Objects   []*Object   `yaml:"objects"`
	Meshes    []*Mesh     `yaml:"meshes"`
	Materials []*Material `yaml:"materials"`
	Images    []*Image    `yaml:"images"`
	Lights    []*Light    `yaml:"lights"`
	Armatures []*Armature `yaml:"armatures"`
	Actions   []*Action   `yaml:"actions"`

	meshes map[string]*Mesh
	images map[string]*Image
}

// Object is a placed scene object.
type Object struct {
	Name          string      `yaml:"name"`
	Type          ObjectType  `yaml:"type"`
	Parent        string      `yaml:"parent"`
	Data          string      `yaml:"data"` // Mesh, light or armature name
	Location      [3]float32  `yaml:"location"`
	Rotation      *[4]float32 `yaml:"rotation_quaternion"` // x, y, z, w
	RotationEuler [3]float32  `yaml:"rotation_euler"`      // radians, XYZ order
	Scale         *[3]float32 `yaml:"scale"`               // nil means unit scale
	Dimensions    [3]float32  `yaml:"dimensions"`
	Hidden        bool        `yaml:"hidden"`
	VertexGroups  []string    `yaml:"vertex_groups"`
	Properties    Properties  `yaml:"properties"`

	ParentObject *Object   `yaml:"-"`
	Children     []*Object `yaml:"-"`
	Mesh         *Mesh     `yaml:"-"`
	Light        *Light    `yaml:"-"`
	Armature     *Armature `yaml:"-"`
}

// Orientation returns location, rotation quaternion and scale.
// An explicit quaternion wins over Euler angles.
func (o *Object) Orientation() (math.Vec3, math.Quat, math.Vec3) {
	rot := math.QuatFromEuler(o.RotationEuler)
	if o.Rotation != nil {
		r := *o.Rotation
		rot = math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}
	}
	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if o.Scale != nil {
		scale = math.Vec3From(*o.Scale)
	}
	return math.Vec3From(o.Location), rot, scale
}

// Light is a light data block.
type Light struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"` // POINT, SUN, SPOT, AREA
	Color      [3]float32 `yaml:"color"`
	Energy     float32    `yaml:"energy"`
	SpotSize   float32    `yaml:"spot_size"`  // radians
	SpotBlend  float32    `yaml:"spot_blend"` // 0..1
	Properties Properties `yaml:"properties"`
}

// Armature is a skeleton data block.
type Armature struct {
	Name  string  `yaml:"name"`
	Bones []*Bone `yaml:"bones"`

	roots []*Bone
}

// RootBones returns bones without a parent, in snapshot order.
func (a *Armature) RootBones() []*Bone {
	return a.roots
}

// Bone is one armature bone in rest pose.
type Bone struct {
	Name   string        `yaml:"name"`
	Parent string        `yaml:"parent"`
	Head   [3]float32    `yaml:"head"` // Relative to the parent's tail
	Length float32       `yaml:"length"`
	Matrix [3][3]float32 `yaml:"matrix"` // Row-major rotation relative to the parent

	Children []*Bone `yaml:"-"`
}

// Action is an animation action.
type Action struct {
	Name       string     `yaml:"name"`
	FrameRange [2]float32 `yaml:"frame_range"`
	FCurves    []FCurve   `yaml:"fcurves"`
}

// FCurve animates one component of one property.
type FCurve struct {
	DataPath   string       `yaml:"data_path"`
	ArrayIndex int          `yaml:"array_index"`
	Keyframes  [][2]float32 `yaml:"keyframes"` // (frame, value)
}

// Roots returns objects without a parent, in snapshot order.
func (s *Scene) Roots() []*Object {
	var roots []*Object
	for _, o := range s.Objects {
		if o.ParentObject == nil {
			roots = append(roots, o)
		}
	}
	return roots
}

// Mesh returns the named mesh data block.
func (s *Scene) Mesh(name string) (*Mesh, bool) {
	m, ok := s.meshes[name]
	return m, ok
}

func unresolved(kind, name, owner string) error {
	return fmt.Errorf("%w: %s %q referenced by %q", ErrUnresolved, kind, name, owner)
}

package scene

import (
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/pkg/math"
)

// Skeleton is the bone tree of an armature.
type Skeleton struct {
	Name  string
	Bones []*Bone
}

// Bone is one bone in its parent's space.
type Bone struct {
	Name     string
	Position [3]float32
	Rotation [4]float32
	Length   float32
	Bones    []*Bone `json:",omitempty"`
}

func exportSkeleton(a *host.Armature) *Skeleton {
	s := &Skeleton{Name: a.Name}
	for _, b := range a.RootBones() {
		s.Bones = append(s.Bones, exportBone(b, 0))
	}
	return s
}

// exportBone offsets the head by the parent's length along +Y, where the
// parent's tail is.
func exportBone(b *host.Bone, parentLength float32) *Bone {
	out := &Bone{
		Name:     b.Name,
		Position: math.Vec3From(b.Head).Add(math.Vec3{Y: parentLength}).Array(),
		Rotation: math.QuatFromMat3(b.Matrix).Array(),
		Length:   b.Length,
	}
	for _, c := range b.Children {
		out.Bones = append(out.Bones, exportBone(c, b.Length))
	}
	return out
}

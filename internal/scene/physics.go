package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/pkg/math"
)

// ErrNoCollisionMesh is returned for a mesh collision shape with no mesh to use.
var ErrNoCollisionMesh = errors.New("collision shape needs a mesh")

// Object custom properties read by the physics export.
const (
	PropPhysicsBody      = "PhysicsBody"
	PropCollisionShape   = "CollisionShape"
	PropCollisionMesh    = "CollisionMesh"
	PropMass             = "Mass"
	PropMargin           = "Margin"
	PropFriction         = "Friction"
	PropRollingFriction  = "RollingFriction"
	PropSpinningFriction = "SpinningFriction"
	PropRestitution      = "Restitution"
	PropCalcCenterOfMass = "CalcCenterOfMass"
)

const (
	defaultFriction = 0.5
	defaultMargin   = 0.5
)

var bodyTypes = map[string]bool{"STATIC": true, "DYNAMIC": true, "KINEMATIC": true}

// Collision shape types.
const (
	ShapeBox                 = "BOX"
	ShapeSphere              = "SPHERE"
	ShapeStaticPlane         = "STATICPLANE"
	ShapeCylinder            = "CYLINDER"
	ShapeCapsule             = "CAPSULE"
	ShapeCone                = "CONE"
	ShapeConvexHull          = "CONVEXHULL"
	ShapeStaticTriangleMesh  = "STATICTRIANGLEMESH"
	ShapeGimpactTriangleMesh = "GIMPACTTRIANGLEMESH"
)

var shapeTypes = map[string]bool{
	ShapeBox: true, ShapeSphere: true, ShapeStaticPlane: true,
	ShapeCylinder: true, ShapeCapsule: true, ShapeCone: true,
	ShapeConvexHull: true, ShapeStaticTriangleMesh: true, ShapeGimpactTriangleMesh: true,
}

// Physics is a rigid body block.
type Physics struct {
	Type             string
	Mass             float32
	Friction         float32
	RollingFriction  float32
	SpinningFriction float32
	Restitution      float32
	CalcCenterOfMass bool
}

// CollisionShape is a collider block. Only the fields of its Type are set.
type CollisionShape struct {
	Type          string
	Mass          float32
	Margin        float32
	HalfExtents   *[3]float32    `json:",omitempty"`
	Radius        *float32       `json:",omitempty"`
	Height        *float32       `json:",omitempty"`
	PlaneNormal   *[3]float32    `json:",omitempty"`
	PlaneConstant *float32       `json:",omitempty"`
	CollisionMesh *CollisionMesh `json:",omitempty"`
}

// CollisionMesh references the mesh a triangle or hull shape is built from.
type CollisionMesh struct {
	Name string
	Mesh string
}

func upperProp(p host.Properties, key string) string {
	s, _ := p.String(key)
	return strings.ToUpper(strings.TrimSpace(s))
}

// bodyOf returns the rigid body declared on o, if any.
func bodyOf(o *host.Object) *Physics {
	typ := upperProp(o.Properties, PropPhysicsBody)
	if !bodyTypes[typ] {
		return nil
	}
	p := o.Properties
	return &Physics{
		Type:             typ,
		Mass:             p.FloatOr(PropMass, 0),
		Friction:         p.FloatOr(PropFriction, defaultFriction),
		RollingFriction:  p.FloatOr(PropRollingFriction, 0),
		SpinningFriction: p.FloatOr(PropSpinningFriction, 0),
		Restitution:      p.FloatOr(PropRestitution, 0),
		CalcCenterOfMass: p.BoolOr(PropCalcCenterOfMass, false),
	}
}

// shapeOf returns the collision shape declared on o, if any. meshRef exports
// the named mesh and returns its reference; "" names o's own mesh.
func shapeOf(o *host.Object, meshRef func(name string) (*CollisionMesh, error)) (*CollisionShape, error) {
	typ := upperProp(o.Properties, PropCollisionShape)
	if !shapeTypes[typ] {
		return nil, nil
	}

	s := &CollisionShape{
		Type:   typ,
		Mass:   o.Properties.FloatOr(PropMass, 0),
		Margin: o.Properties.FloatOr(PropMargin, defaultMargin),
	}
	dims := math.Vec3From(o.Dimensions)

	switch typ {
	case ShapeBox, ShapeCylinder:
		half := dims.Scale(0.5).Array()
		s.HalfExtents = &half
	case ShapeSphere:
		r := dims.MaxComponent() / 2
		s.Radius = &r
	case ShapeCapsule, ShapeCone:
		r := max(dims.X, dims.Y) / 2
		h := dims.Z
		s.Radius = &r
		s.Height = &h
	case ShapeStaticPlane:
		normal := [3]float32{0, 0, 1}
		var constant float32
		s.PlaneNormal = &normal
		s.PlaneConstant = &constant
	default:
		name, _ := o.Properties.String(PropCollisionMesh)
		if name == "" && o.Mesh == nil {
			return nil, fmt.Errorf("%w: object %q shape %s", ErrNoCollisionMesh, o.Name, typ)
		}
		ref, err := meshRef(name)
		if err != nil {
			return nil, err
		}
		s.CollisionMesh = ref
	}
	return s, nil
}

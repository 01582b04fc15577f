package scene

import (
	"os"
	"path"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/action"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/jsondoc"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
)

// PropOriginObject names an object whose exported file is reused.
const PropOriginObject = "originObject"

// ObjectsKey is the scene document field holding placements.
const ObjectsKey = "Objects"

// ObjectPath returns the asset-relative path of an object file.
func ObjectPath(name string) string {
	return path.Join("objects", name+".json")
}

// ScenePath returns the asset-relative path of a scene file.
func ScenePath(name string) string {
	return path.Join("scenes", name+".json")
}

// ExportScene writes every root object of sc and the scene document.
//
// An existing scene document is the base of the new one: its other fields are
// kept and Objects is replaced by this run's placements. Any failure other
// than a skipped material aborts the run; files written so far stay on disk.
func (s *Session) ExportScene(sc *host.Scene) (rep *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			rep, err = s.report, errors.Errorf("export of scene %q panicked: %v", sc.Name, r)
		}
	}()

	s.baseDir = sc.BaseDir
	logger.Info("exporting scene", zap.String("scene", sc.Name), zap.String("out", s.layout.Root))

	doc, err := s.loadScene(sc.Name)
	if err != nil {
		return s.report, errors.Wrap(err, "loading scene base")
	}

	placements := []Placement{}
	for _, o := range sc.Roots() {
		p, ok, err := s.exportObject(sc, o)
		if err != nil {
			return s.report, errors.Wrapf(err, "object %q", o.Name)
		}
		if ok {
			placements = append(placements, p)
		}
	}

	if s.cfg.Export.Actions {
		for _, a := range sc.Actions {
			if err := action.Export(a, s.layout); err != nil {
				return s.report, errors.Wrapf(err, "action %q", a.Name)
			}
			s.report.Actions++
		}
	}

	objects, err := jsondoc.FromValue(placements)
	if err != nil {
		return s.report, errors.Wrap(err, "encoding placements")
	}
	jsondoc.Set(doc.Root, ObjectsKey, objects)
	if err := s.layout.WriteJSON(ScenePath(sc.Name), doc); err != nil {
		return s.report, errors.Wrap(err, "writing scene")
	}

	s.report.Placements = len(placements)
	s.report.Meshes = s.meshes.Len()
	s.report.Materials = s.materials.Len()
	s.report.Textures = s.textures.Len()
	s.report.MeshesReused, _ = s.meshes.Stats()
	s.report.MaterialsReused, _ = s.materials.Stats()
	s.report.TexturesReused, _ = s.textures.Stats()

	logger.Info("scene exported",
		zap.String("scene", sc.Name),
		zap.Int("objects", s.report.Objects),
		zap.Int("placements", s.report.Placements),
		zap.Int("meshes", s.report.Meshes),
		zap.Int("materials", s.report.Materials),
		zap.Int("textures", s.report.Textures),
		zap.Int("actions", s.report.Actions),
		zap.Int("meshes_reused", s.report.MeshesReused),
		zap.Int("materials_reused", s.report.MaterialsReused),
		zap.Int("textures_reused", s.report.TexturesReused),
		zap.Int("skipped", len(s.report.SkippedErrors())),
	)
	return s.report, nil
}

// loadScene returns the existing scene document, or an empty one.
func (s *Session) loadScene(name string) (*jsondoc.Document, error) {
	p, err := s.layout.SysPath(ScenePath(name))
	if err != nil {
		return nil, err
	}
	doc, err := jsondoc.Load(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return jsondoc.New(), nil
	case err != nil:
		logger.Warn("existing scene unreadable, starting fresh", zap.String("path", p), zap.Error(err))
		return jsondoc.New(), nil
	case !jsondoc.IsObject(doc.Root):
		logger.Warn("existing scene is not an object, starting fresh", zap.String("path", p))
		return jsondoc.New(), nil
	}
	return doc, nil
}

func (s *Session) exportable(t host.ObjectType) bool {
	switch t {
	case host.TypeMesh, host.TypeEmpty, host.TypeArmature:
		return true
	case host.TypeLight:
		return s.cfg.Light.Export
	}
	return false
}

// exportObject writes o's object file unless it reuses another object's file,
// and returns its placement. Hidden objects get no placement.
func (s *Session) exportObject(sc *host.Scene, o *host.Object) (Placement, bool, error) {
	if !s.exportable(o.Type) {
		return Placement{}, false, nil
	}

	name, _ := o.Properties.String(PropOriginObject)
	if name == "" || !s.saved[name] {
		root := &Node{}
		if err := s.exportNode(sc, o, root); err != nil {
			return Placement{}, false, err
		}
		if err := s.layout.WriteJSON(ObjectPath(o.Name), ObjectFile{Root: root}); err != nil {
			return Placement{}, false, err
		}
		s.saved[o.Name] = true
		s.report.Objects++
		name = o.Name
	} else {
		logger.Debug("reusing object", zap.String("object", o.Name), zap.String("origin", name))
	}

	if o.Hidden {
		return Placement{}, false, nil
	}

	pos, rot, scale := o.Orientation()
	return Placement{
		Name:     o.Name,
		Object:   s.layout.Qualified(ObjectPath(name)),
		Position: pos.Array(),
		Rotation: rot.Array(),
		Scale:    scale.Array(),
	}, true, nil
}

func (s *Session) exportNode(sc *host.Scene, o *host.Object, node *Node) error {
	if !s.exportable(o.Type) {
		return nil
	}
	if s.visited[o] {
		return errors.Wrapf(host.ErrCyclicHierarchy, "object %q visited twice", o.Name)
	}
	s.visited[o] = true

	node.Name = o.Name
	switch o.Type {
	case host.TypeMesh:
		a, err := s.meshAsset(o.Mesh, sc.Name)
		if err != nil {
			return err
		}
		node.Mesh = &MeshRef{
			Mesh:         s.layout.Qualified(a.DescriptorPath()),
			Name:         a.Name(),
			VertexGroups: o.VertexGroups,
		}
	case host.TypeLight:
		node.Light = exportLight(o, s.cfg.Light)
	case host.TypeArmature:
		node.Skeleton = exportSkeleton(o.Armature)
	}

	if s.cfg.Export.Physics && (o.Type == host.TypeMesh || o.Type == host.TypeEmpty) {
		if err := s.exportPhysics(sc, o, node); err != nil {
			return err
		}
	}

	if o.ParentObject != nil {
		pos, rot, scale := o.Orientation()
		p, r, sl := pos.Array(), rot.Array(), scale.Array()
		node.Position, node.Rotation, node.Scale = &p, &r, &sl
	}

	for _, c := range o.Children {
		child := &Node{}
		if err := s.exportNode(sc, c, child); err != nil {
			return err
		}
		if !child.empty() {
			node.Nodes = append(node.Nodes, child)
		}
	}
	return nil
}

// exportPhysics attaches a rigid body or, failing that, a collision shape.
func (s *Session) exportPhysics(sc *host.Scene, o *host.Object, node *Node) error {
	if body := bodyOf(o); body != nil {
		node.Physics = body
		return nil
	}

	shape, err := shapeOf(o, func(name string) (*CollisionMesh, error) {
		m := o.Mesh
		if name != "" {
			var ok bool
			if m, ok = sc.Mesh(name); !ok {
				return nil, errors.Wrapf(host.ErrUnresolved, "collision mesh %q of %q", name, o.Name)
			}
		}
		a, err := s.meshAsset(m, sc.Name)
		if err != nil {
			return nil, err
		}
		return &CollisionMesh{Name: a.Name(), Mesh: s.layout.Qualified(a.DescriptorPath())}, nil
	})
	if errors.Is(err, ErrNoCollisionMesh) {
		logger.Warn("collision shape skipped", zap.String("object", o.Name), zap.Error(err))
		s.report.Skip(err)
		return nil
	}
	if err != nil {
		return err
	}
	node.CollisionShape = shape
	return nil
}

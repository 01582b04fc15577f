package host

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML snapshot and resolves its cross references.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML snapshot and resolves its cross references.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if err := s.Resolve(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve links name references into pointers: object parents and data blocks,
// mesh material slots, texture node images and bone hierarchies.
// Zero object scales default to (1, 1, 1).
func (s *Scene) Resolve() error {
	objects := make(map[string]*Object, len(s.Objects))
	for _, o := range s.Objects {
		if _, dup := objects[o.Name]; dup {
			return fmt.Errorf("%w: object %q", ErrDuplicateName, o.Name)
		}
		objects[o.Name] = o
		o.Children = nil
	}

	s.meshes = index(s.Meshes, func(m *Mesh) string { return m.Name })
	s.images = index(s.Images, func(im *Image) string { return im.Name })
	materials := index(s.Materials, func(m *Material) string { return m.Name })
	lights := index(s.Lights, func(l *Light) string { return l.Name })
	armatures := index(s.Armatures, func(a *Armature) string { return a.Name })

	for _, m := range s.Meshes {
		m.MaterialSlots = make([]*Material, len(m.Materials))
		for i, name := range m.Materials {
			if name == "" {
				continue
			}
			mat, ok := materials[name]
			if !ok {
				return unresolved("material", name, m.Name)
			}
			m.MaterialSlots[i] = mat
		}
	}

	for _, mat := range s.Materials {
		for i := range mat.Nodes {
			node := &mat.Nodes[i]
			if node.Type != NodeTexImage || node.Image == "" {
				continue
			}
			im, ok := s.images[node.Image]
			if !ok {
				return unresolved("image", node.Image, mat.Name)
			}
			node.ImageRef = im
		}
	}

	for _, a := range s.Armatures {
		if err := a.resolve(); err != nil {
			return err
		}
	}

	for _, o := range s.Objects {
		if o.Parent != "" {
			parent, ok := objects[o.Parent]
			if !ok {
				return unresolved("parent", o.Parent, o.Name)
			}
			o.ParentObject = parent
			parent.Children = append(parent.Children, o)
		}
		if err := s.resolveData(o, lights, armatures); err != nil {
			return err
		}
	}

	for _, o := range s.Objects {
		if err := checkAncestry(o); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scene) resolveData(o *Object, lights map[string]*Light, armatures map[string]*Armature) error {
	if o.Data == "" {
		switch o.Type {
		case TypeMesh, TypeLight, TypeArmature:
			return fmt.Errorf("%w: %s object %q", ErrUnknownDataBlock, o.Type, o.Name)
		}
		return nil
	}

	var ok bool
	switch o.Type {
	case TypeMesh:
		o.Mesh, ok = s.meshes[o.Data]
	case TypeLight:
		o.Light, ok = lights[o.Data]
	case TypeArmature:
		o.Armature, ok = armatures[o.Data]
	default:
		ok = true
	}
	if !ok {
		return unresolved(string(o.Type), o.Data, o.Name)
	}
	return nil
}

func (a *Armature) resolve() error {
	bones := index(a.Bones, func(b *Bone) string { return b.Name })
	a.roots = nil
	for _, b := range a.Bones {
		b.Children = nil
	}
	for _, b := range a.Bones {
		if b.Parent == "" {
			a.roots = append(a.roots, b)
			continue
		}
		parent, ok := bones[b.Parent]
		if !ok {
			return unresolved("bone", b.Parent, a.Name+"/"+b.Name)
		}
		parent.Children = append(parent.Children, b)
	}
	return nil
}

// checkAncestry walks parent pointers and fails on a loop.
func checkAncestry(o *Object) error {
	seen := map[*Object]bool{}
	for cur := o; cur != nil; cur = cur.ParentObject {
		if seen[cur] {
			return fmt.Errorf("%w: at object %q", ErrCyclicHierarchy, o.Name)
		}
		seen[cur] = true
	}
	return nil
}

func index[T any](items []T, key func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}

package scene

// Node is one object in an object file's node tree.
type Node struct {
	Name           string          `json:",omitempty"`
	Mesh           *MeshRef        `json:",omitempty"`
	Light          *Light          `json:",omitempty"`
	Skeleton       *Skeleton       `json:",omitempty"`
	Physics        *Physics        `json:",omitempty"`
	CollisionShape *CollisionShape `json:",omitempty"`
	Position       *[3]float32     `json:",omitempty"`
	Rotation       *[4]float32     `json:",omitempty"` // x, y, z, w
	Scale          *[3]float32     `json:",omitempty"`
	Nodes          []*Node         `json:",omitempty"`
}

// empty reports whether exporting produced nothing for the node.
func (n *Node) empty() bool {
	return n.Name == ""
}

// ObjectFile is the document written to objects/<name>.json.
type ObjectFile struct {
	Root *Node
}

// MeshRef references an exported mesh descriptor.
type MeshRef struct {
	Mesh         string
	Name         string
	VertexGroups []string `json:",omitempty"`
}

// Placement is one entry of the scene's Objects list.
type Placement struct {
	Name     string
	Object   string
	Position [3]float32
	Rotation [4]float32
	Scale    [3]float32
}

// Package material resolves material templates against shader parameters and
// writes material descriptors.
package material

import (
	"strings"

	"github.com/Faultbox/lite3d-exporter/internal/host"
)

// DefaultParamPrefix is the node label prefix marking parameter nodes.
const DefaultParamPrefix = "Lite3d"

// Kind is the variant of a Param.
type Kind int

// Param kinds.
const (
	KindScalar Kind = iota
	KindVector
	KindTexture
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindTexture:
		return "texture"
	}
	return "unknown"
}

// Param is one harvested material parameter: a scalar, a vector or a texture.
type Param struct {
	Kind    Kind
	Scalar  float32
	Vector  []float32
	Texture *host.ShaderNode
}

// Scalar returns a scalar parameter.
func Scalar(f float32) Param {
	return Param{Kind: KindScalar, Scalar: f}
}

// Vector returns a vector parameter.
func Vector(v ...float32) Param {
	return Param{Kind: KindVector, Vector: v}
}

// Texture returns a texture parameter sampling node's image.
func Texture(node *host.ShaderNode) Param {
	return Param{Kind: KindTexture, Texture: node}
}

// Params maps parameter names to values.
type Params map[string]Param

// Harvest collects parameters from a material's shader graph.
//
// Every node labelled with prefix contributes its usable input sockets:
// colors as 4-vectors (alpha taken from a usable Alpha socket), vectors as
// 3-vectors and values as scalars. Every image texture node then contributes
// a texture parameter keyed by its label.
func Harvest(m *host.Material, prefix string) Params {
	if prefix == "" {
		prefix = DefaultParamPrefix
	}

	params := make(Params)
	for i := range m.Nodes {
		node := &m.Nodes[i]
		if !strings.HasPrefix(node.Label, prefix) {
			continue
		}
		for j := range node.Inputs {
			s := &node.Inputs[j]
			if !s.Usable() {
				continue
			}
			switch s.Kind {
			case host.SocketRGBA:
				c := pad(s.Default, 4)
				if alpha, ok := node.Input("Alpha"); ok && alpha.Usable() && len(alpha.Default) > 0 {
					c[3] = alpha.Default[0]
				}
				params[s.Name] = Vector(c...)
			case host.SocketVector:
				params[s.Name] = Vector(pad(s.Default, 3)...)
			case host.SocketValue:
				params[s.Name] = Scalar(pad(s.Default, 1)[0])
			}
		}
	}

	for i := range m.Nodes {
		node := &m.Nodes[i]
		if node.Type == host.NodeTexImage && node.Label != "" {
			params[node.Label] = Texture(node)
		}
	}
	return params
}

func pad(v []float32, n int) []float32 {
	out := make([]float32, n)
	copy(out, v)
	return out
}

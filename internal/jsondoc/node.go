package jsondoc

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Mapping returns an object node with the given key/value pairs.
func Mapping(pairs ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(pairs); i += 2 {
		Set(n, pairs[i].(string), pairs[i+1].(*yaml.Node))
	}
	return n
}

// String returns a string node.
func String(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Float returns a number node.
func Float(f float32) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(float64(f), 'g', -1, 32)}
}

// Floats returns an array node of numbers.
func Floats(fs []float32) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, f := range fs {
		n.Content = append(n.Content, Float(f))
	}
	return n
}

// Get returns the value of key in a mapping node.
func Get(m *yaml.Node, key string) (*yaml.Node, bool) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1], true
		}
	}
	return nil, false
}

// Set replaces the value of key in place, or appends the key when absent.
func Set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, String(key), value)
}

// IsString reports whether n is a string scalar.
func IsString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// IsObject reports whether n is a mapping.
func IsObject(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.MappingNode
}

package material

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/jsondoc"
	"github.com/Faultbox/lite3d-exporter/internal/texture"
)

// TextureExporter exports the image sampled by a texture node.
type TextureExporter interface {
	ExportTexture(node *host.ShaderNode) (texture.Ref, error)
}

// Resolve rewrites a template in place.
//
// Mappings carrying Name and Type ("float" or "v3") take their Value from the
// material property of that name. Then every "<token>" string naming a
// parameter is replaced: the value becomes the token and Type, Value or the
// texture fields are set on the same mapping. Only the first substitution in
// a mapping is applied; the rest of that mapping is left untouched. A texture
// whose node has no image leaves its token in place.
func Resolve(doc *jsondoc.Document, params Params, props host.Properties, textures TextureExporter) error {
	applyProperties(doc.Root, props)
	return resolveNode(doc.Root, params, textures)
}

func applyProperties(n *yaml.Node, props host.Properties) {
	switch n.Kind {
	case yaml.MappingNode:
		applyProperty(n, props)
		for i := 1; i < len(n.Content); i += 2 {
			applyProperties(n.Content[i], props)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			applyProperties(item, props)
		}
	}
}

func applyProperty(m *yaml.Node, props host.Properties) {
	name, ok := jsondoc.Get(m, "Name")
	if !ok || !jsondoc.IsString(name) {
		return
	}
	typ, ok := jsondoc.Get(m, "Type")
	if !ok || !jsondoc.IsString(typ) {
		return
	}

	switch typ.Value {
	case "float":
		if f, ok := props.Float(name.Value); ok {
			jsondoc.Set(m, "Value", jsondoc.Float(f))
		}
	case "v3":
		if v, ok := props.Vec3(name.Value); ok {
			jsondoc.Set(m, "Value", jsondoc.Floats(v[:]))
		}
	}
}

func resolveNode(n *yaml.Node, params Params, textures TextureExporter) error {
	switch n.Kind {
	case yaml.MappingNode:
		return resolveMapping(n, params, textures)
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if err := resolveNode(item, params, textures); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveMapping(m *yaml.Node, params Params, textures TextureExporter) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			if err := resolveNode(val, params, textures); err != nil {
				return err
			}
			continue
		}

		token, ok := parseToken(val)
		if !ok {
			continue
		}
		p, ok := params[token]
		if !ok {
			continue
		}
		applied, err := substitute(m, key.Value, token, p, textures)
		if err != nil || applied {
			return err
		}
	}
	return nil
}

// parseToken returns the name inside a "<name>" string.
func parseToken(n *yaml.Node) (string, bool) {
	if !jsondoc.IsString(n) {
		return "", false
	}
	s := strings.TrimSpace(n.Value)
	if len(s) <= 2 || s[0] != '<' || s[len(s)-1] != '>' {
		return "", false
	}
	return strings.Trim(s, " <>"), true
}

func substitute(m *yaml.Node, key, token string, p Param, textures TextureExporter) (bool, error) {
	var ref texture.Ref
	if p.Kind == KindTexture {
		var err error
		ref, err = textures.ExportTexture(p.Texture)
		if errors.Is(err, texture.ErrNoImage) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("texture %q: %w", token, err)
		}
	}

	jsondoc.Set(m, key, jsondoc.String(strings.ReplaceAll(token, " ", "")))
	switch p.Kind {
	case KindTexture:
		jsondoc.Set(m, "Type", jsondoc.String("sampler"))
		jsondoc.Set(m, "TextureName", jsondoc.String(ref.Name))
		jsondoc.Set(m, "TexturePath", jsondoc.String(ref.Path))
	case KindScalar:
		jsondoc.Set(m, "Type", jsondoc.String("float"))
		jsondoc.Set(m, "Value", jsondoc.Float(p.Scalar))
	case KindVector:
		jsondoc.Set(m, "Type", jsondoc.String(fmt.Sprintf("v%d", len(p.Vector))))
		jsondoc.Set(m, "Value", jsondoc.Floats(p.Vector))
	}
	return true, nil
}

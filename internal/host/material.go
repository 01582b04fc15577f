package host

// Shader node types the exporter inspects.
const (
	NodeTexImage = "TEX_IMAGE"
)

// Socket kinds.
const (
	SocketRGBA   = "RGBA"
	SocketValue  = "VALUE"
	SocketVector = "VECTOR"
)

// Material is a material with its shader node graph.
type Material struct {
	Name       string       `yaml:"name"`
	Nodes      []ShaderNode `yaml:"nodes"`
	Properties Properties   `yaml:"properties"`
}

// ShaderNode is one node of a material's shader graph.
type ShaderNode struct {
	Name          string   `yaml:"name"`
	Label         string   `yaml:"label"`
	Type          string   `yaml:"type"`
	Inputs        []Socket `yaml:"inputs"`
	Image         string   `yaml:"image"`         // TEX_IMAGE only
	Interpolation string   `yaml:"interpolation"` // Linear, Closest, Cubic
	Extension     string   `yaml:"extension"`     // REPEAT, EXTEND, CLIP

	ImageRef *Image `yaml:"-"`
}

// Input returns the named input socket.
func (n *ShaderNode) Input(name string) (*Socket, bool) {
	for i := range n.Inputs {
		if n.Inputs[i].Name == name {
			return &n.Inputs[i], true
		}
	}
	return nil, false
}

// Socket is a node input with its unconnected default value.
type Socket struct {
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind"`
	Linked      bool      `yaml:"linked"`
	Disabled    bool      `yaml:"disabled"`
	Unavailable bool      `yaml:"unavailable"`
	Default     []float32 `yaml:"default"`
}

// Usable reports whether the socket's default value is what the shader sees.
func (s *Socket) Usable() bool {
	return !s.Linked && !s.Disabled && !s.Unavailable
}

// Image is an image data block.
type Image struct {
	Name       string    `yaml:"name"`
	FilePath   string    `yaml:"filepath"`
	Colorspace string    `yaml:"colorspace"`
	Width      int       `yaml:"width"`
	Height     int       `yaml:"height"`
	Pixels     []float32 `yaml:"pixels"` // RGBA, rows bottom-up, may be empty
}

// HasPixels reports whether in-memory pixel data is available.
func (im *Image) HasPixels() bool {
	return im.Width > 0 && im.Height > 0 && len(im.Pixels) == im.Width*im.Height*4
}

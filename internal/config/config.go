// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/Faultbox/lite3d-exporter/internal/logger"
	"github.com/Faultbox/lite3d-exporter/pkg/formats"
)

// Config holds all export settings.
type Config struct {
	Export   ExportConfig   `yaml:"export"`
	Mesh     MeshConfig     `yaml:"mesh"`
	Material MaterialConfig `yaml:"material"`
	Light    LightConfig    `yaml:"light"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ExportConfig holds output location and package naming.
type ExportConfig struct {
	OutputDir    string `yaml:"output_dir"`    // Root of the written asset tree
	Package      string `yaml:"package"`       // Package for scenes, objects, materials
	ImagePackage string `yaml:"image_package"` // Package for raw texture images
	MeshPackage  string `yaml:"mesh_package"`  // Package for .m files
	Physics      bool   `yaml:"physics"`       // Export physics bodies and collision shapes
	Actions      bool   `yaml:"actions"`       // Export animation actions
}

// MeshConfig holds vertex layout and mesh file settings.
type MeshConfig struct {
	SaveTangent     bool   `yaml:"save_tangent"`
	SaveBiTangent   bool   `yaml:"save_bitangent"`
	SaveIndexes     bool   `yaml:"save_indexes"`
	FlipUV          bool   `yaml:"flip_uv"`
	VertexColors    bool   `yaml:"vertex_colors"`
	Skeleton        bool   `yaml:"skeleton"` // Bone indices and weights per vertex
	SinglePartition bool   `yaml:"single_partition"`
	FormatVersion   string `yaml:"format_version"`
}

// MaterialConfig holds material template and texture settings.
type MaterialConfig struct {
	Template           string `yaml:"template"`     // Default template name
	TemplateDir        string `yaml:"template_dir"` // Defaults to the output dir
	TypePBR            bool   `yaml:"type_pbr"`
	ParamNodePrefix    string `yaml:"param_node_prefix"`
	CopyTexImages      bool   `yaml:"copy_tex_images"`
	TextureCompression bool   `yaml:"texture_compression"`
}

// LightConfig holds light export defaults used when a light has no custom value.
type LightConfig struct {
	Export                      bool    `yaml:"export"`
	DefaultConstantAttenuation  float32 `yaml:"default_constant_attenuation"`
	DefaultLinearAttenuation    float32 `yaml:"default_linear_attenuation"`
	DefaultQuadraticAttenuation float32 `yaml:"default_quadratic_attenuation"`
	DefaultInfluenceDistance    float32 `yaml:"default_influence_distance"`
	DefaultInfluenceMinRadiance float32 `yaml:"default_influence_min_radiance"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the exporter's stock settings.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir:    ".",
			Package:      "samples",
			ImagePackage: "samples",
			MeshPackage:  "samples",
			Physics:      false,
			Actions:      true,
		},
		Mesh: MeshConfig{
			SaveTangent:   true,
			SaveBiTangent: false,
			SaveIndexes:   true,
			FlipUV:        false,
			VertexColors:  false,
			Skeleton:      false,
			FormatVersion: formats.DefaultMVersion.String(),
		},
		Material: MaterialConfig{
			Template:           "CommonMaterialTemplate",
			TypePBR:            true,
			ParamNodePrefix:    "Lite3d",
			CopyTexImages:      true,
			TextureCompression: false,
		},
		Light: LightConfig{
			Export:                      true,
			DefaultConstantAttenuation:  0.0,
			DefaultLinearAttenuation:    0.01,
			DefaultQuadraticAttenuation: 0.0001,
			DefaultInfluenceDistance:    0.0,
			DefaultInfluenceMinRadiance: 0.001,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Version parses FormatVersion into the triple packed into .m headers.
func (m MeshConfig) Version() (formats.MVersion, error) {
	v, err := semver.NewVersion(m.FormatVersion)
	if err != nil {
		return formats.MVersion{}, fmt.Errorf("mesh format version %q: %w", m.FormatVersion, err)
	}
	if v.Major() > 0xFF || v.Minor() > 0xFF || v.Patch() > 0xFF {
		return formats.MVersion{}, fmt.Errorf("mesh format version %q: components must fit in a byte", m.FormatVersion)
	}
	return formats.MVersion{
		Major: uint8(v.Major()),
		Minor: uint8(v.Minor()),
		Patch: uint8(v.Patch()),
	}, nil
}

// TemplateRoot returns the directory material templates are read from.
func (c *Config) TemplateRoot() string {
	if c.Material.TemplateDir != "" {
		return c.Material.TemplateDir
	}
	return c.Export.OutputDir
}

// Validate checks settings that cannot be checked by YAML decoding alone.
func (c *Config) Validate() error {
	if c.Export.Package == "" || c.Export.ImagePackage == "" || c.Export.MeshPackage == "" {
		return fmt.Errorf("package names must not be empty")
	}
	if c.Material.Template == "" {
		return fmt.Errorf("material template name must not be empty")
	}
	if _, err := c.Mesh.Version(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

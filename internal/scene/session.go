// Package scene exports a host scene snapshot: object node trees, scene
// placements, and through them meshes, materials, textures and actions.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/assets"
	"github.com/Faultbox/lite3d-exporter/internal/config"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
	"github.com/Faultbox/lite3d-exporter/internal/material"
	"github.com/Faultbox/lite3d-exporter/internal/mesh"
	"github.com/Faultbox/lite3d-exporter/internal/texture"
	"github.com/Faultbox/lite3d-exporter/pkg/formats"
)

// Report summarizes one export run.
type Report struct {
	Objects    int
	Placements int
	Meshes     int
	Materials  int
	Textures   int
	Actions    int

	// Lookups served from the session caches instead of exporting again.
	MeshesReused    int
	MaterialsReused int
	TexturesReused  int

	// Skipped accumulates recoverable failures.
	Skipped error
}

// Skip records a recoverable failure.
func (r *Report) Skip(err error) {
	r.Skipped = multierr.Append(r.Skipped, err)
}

// SkippedErrors returns the recoverable failures in the order they happened.
func (r *Report) SkippedErrors() []error {
	return multierr.Errors(r.Skipped)
}

// Session owns the per-run caches of one export. It is not safe for
// concurrent use.
type Session struct {
	cfg     *config.Config
	layout  assets.Layout
	version formats.MVersion
	baseDir string

	meshes    *assets.Cache[*mesh.Asset]
	materials *assets.Cache[mesh.MaterialRef]
	textures  *assets.Cache[texture.Ref]
	saved     map[string]bool // Object files written this run
	visited   map[*host.Object]bool

	report *Report
}

// NewSession creates a session writing under cfg.Export.OutputDir.
func NewSession(cfg *config.Config) (*Session, error) {
	version, err := cfg.Mesh.Version()
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg: cfg,
		layout: assets.Layout{
			Root: cfg.Export.OutputDir,
			Packages: assets.Packages{
				Generic: cfg.Export.Package,
				Image:   cfg.Export.ImagePackage,
				Mesh:    cfg.Export.MeshPackage,
			},
		},
		version:   version,
		meshes:    assets.NewCache[*mesh.Asset](),
		materials: assets.NewCache[mesh.MaterialRef](),
		textures:  assets.NewCache[texture.Ref](),
		saved:     make(map[string]bool),
		visited:   make(map[*host.Object]bool),
		report:    &Report{},
	}, nil
}

// Layout returns the session's output layout.
func (s *Session) Layout() assets.Layout {
	return s.layout
}

// meshAsset builds and saves a mesh once per run.
func (s *Session) meshAsset(m *host.Mesh, scene string) (*mesh.Asset, error) {
	return s.meshes.GetOrCreate(m.Name, func() (*mesh.Asset, error) {
		a, err := mesh.Build(m, mesh.OptionsFromConfig(s.cfg.Mesh))
		if err != nil {
			return nil, err
		}
		err = a.Save(mesh.SaveOptions{
			Layout:          s.layout,
			Version:         s.version,
			Scene:           scene,
			SinglePartition: s.cfg.Mesh.SinglePartition,
			Materials:       s,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	})
}

// ResolveMaterial exports m once per run. A missing template is recorded in
// the report and the reference is still returned.
func (s *Session) ResolveMaterial(m *host.Material) (mesh.MaterialRef, error) {
	return s.materials.GetOrCreate(m.Name, func() (mesh.MaterialRef, error) {
		ref := mesh.MaterialRef{
			Type:     "Default",
			Name:     material.Name(m),
			Material: s.layout.Qualified(material.Path(m)),
		}
		if s.cfg.Material.TypePBR {
			ref.Type = "PBR"
		}

		err := material.Export(m, material.Options{
			Layout:          s.layout,
			TemplateRoot:    s.cfg.TemplateRoot(),
			DefaultTemplate: s.cfg.Material.Template,
			ParamPrefix:     s.cfg.Material.ParamNodePrefix,
		}, s)
		if errors.Is(err, material.ErrMissingTemplate) {
			logger.Error("material skipped", zap.String("material", m.Name), zap.Error(err))
			s.report.Skip(err)
			err = nil
		}
		return ref, err
	})
}

// ExportTexture exports the image sampled by node once per run. A node
// without an image is recorded in the report.
func (s *Session) ExportTexture(node *host.ShaderNode) (texture.Ref, error) {
	if node.ImageRef == nil {
		err := fmt.Errorf("%w: node %q", texture.ErrNoImage, node.Name)
		logger.Warn("texture skipped", zap.String("node", node.Name), zap.Error(err))
		s.report.Skip(err)
		return texture.Ref{}, err
	}
	return s.textures.GetOrCreate(node.ImageRef.Name, func() (texture.Ref, error) {
		return texture.Export(node, texture.Options{
			Layout:      s.layout,
			BaseDir:     s.baseDir,
			CopyImages:  s.cfg.Material.CopyTexImages,
			Compression: s.cfg.Material.TextureCompression,
		})
	})
}

package material

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/assets"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/jsondoc"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
)

// ErrMissingTemplate is returned when a material's template file does not exist.
var ErrMissingTemplate = errors.New("material template not found")

// TemplateProperty is the material custom property overriding the template name.
const TemplateProperty = "Template"

// Options controls material export.
type Options struct {
	Layout          assets.Layout
	TemplateRoot    string // Directory holding materials/<template>.json
	DefaultTemplate string
	ParamPrefix     string
}

// Name returns the engine-side material name.
func Name(m *host.Material) string {
	return m.Name + ".material"
}

// Path returns the asset-relative path of the material JSON.
func Path(m *host.Material) string {
	return path.Join("materials", m.Name+".json")
}

// TemplatePath returns the template file path of m relative to the template root.
func TemplatePath(m *host.Material, defaultTemplate string) string {
	name, ok := m.Properties.String(TemplateProperty)
	if !ok || name == "" {
		name = defaultTemplate
	}
	return path.Join("materials", name+".json")
}

// Export loads m's template, resolves it and writes materials/<name>.json.
func Export(m *host.Material, opts Options, textures TextureExporter) error {
	tmpl := filepath.Join(opts.TemplateRoot, filepath.FromSlash(TemplatePath(m, opts.DefaultTemplate)))
	if _, err := os.Stat(tmpl); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %s", ErrMissingTemplate, m.Name, tmpl)
		}
		return err
	}

	doc, err := jsondoc.Load(tmpl)
	if err != nil {
		return fmt.Errorf("material %q: %w", m.Name, err)
	}

	params := Harvest(m, opts.ParamPrefix)
	logger.Debug("material params", zap.String("material", m.Name), zap.Int("count", len(params)))

	if err := Resolve(doc, params, m.Properties, textures); err != nil {
		return fmt.Errorf("material %q: %w", m.Name, err)
	}
	return opts.Layout.WriteJSON(Path(m), doc)
}

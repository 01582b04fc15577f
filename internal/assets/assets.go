// Package assets handles asset path naming, JSON output and per-run memoization.
package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/logger"
)

// JSONIndent is the indentation used for every written descriptor.
const JSONIndent = "  "

// Packages names the content package of each asset category.
type Packages struct {
	Generic string // Scenes, objects, materials, mesh and image descriptors
	Image   string // Raw texture images
	Mesh    string // .m mesh files
}

// Layout maps asset-relative POSIX paths to package-qualified names and
// to files under the output root.
type Layout struct {
	Root     string
	Packages Packages
}

// Qualified returns "<package>:<relPath>" in the generic package.
func (l Layout) Qualified(relPath string) string {
	return qualify(l.Packages.Generic, relPath)
}

// QualifiedImage returns relPath qualified with the image package.
func (l Layout) QualifiedImage(relPath string) string {
	return qualify(l.Packages.Image, relPath)
}

// QualifiedMesh returns relPath qualified with the mesh package.
func (l Layout) QualifiedMesh(relPath string) string {
	return qualify(l.Packages.Mesh, relPath)
}

// SysPath returns the file system path of relPath and creates its parent directories.
func (l Layout) SysPath(relPath string) (string, error) {
	p := filepath.Join(l.Root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", relPath, err)
	}
	return p, nil
}

func qualify(pkg, relPath string) string {
	return pkg + ":" + path.Clean(relPath)
}

// WriteJSON writes v as indented JSON to relPath under the layout root.
func (l Layout) WriteJSON(relPath string, v any) error {
	p, err := l.SysPath(relPath)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", JSONIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", relPath, err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}
	logger.Info("saved ok", zap.String("path", p))
	return nil
}

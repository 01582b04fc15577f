// Package texture writes image descriptors and places texture images in the
// output tree.
package texture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/Faultbox/lite3d-exporter/internal/assets"
	"github.com/Faultbox/lite3d-exporter/internal/host"
	"github.com/Faultbox/lite3d-exporter/internal/logger"
)

// Texture errors.
var (
	ErrMissingSource = errors.New("image source file not found")
	ErrNoImage       = errors.New("texture node has no image")
	ErrNoPixels      = errors.New("image has no pixel data")
)

// hostRelativePrefix marks host paths relative to the host file directory.
const hostRelativePrefix = "//"

// Options controls texture export.
type Options struct {
	Layout      assets.Layout
	BaseDir     string // Host file directory
	CopyImages  bool
	Compression bool
}

// Descriptor is the image JSON document.
type Descriptor struct {
	Filtering   string
	ImageFormat string
	TextureType string
	Compression bool
	Wrapping    string
	Image       string
	SRGB        bool `json:"sRGB,omitempty"`
}

// Ref identifies an exported texture.
type Ref struct {
	Name string // <stem>.texture
	Path string // Package-qualified descriptor path
}

// Stem returns the image name without extension.
func Stem(im *host.Image) string {
	return strings.TrimSuffix(im.Name, path.Ext(im.Name))
}

// DescriptorPath returns the asset-relative path of the image JSON.
func DescriptorPath(im *host.Image) string {
	return path.Join("textures/json", Stem(im)+".json")
}

// SourcePath resolves a host image path to a file system path.
func SourcePath(filePath, baseDir string) (string, error) {
	if rest, ok := strings.CutPrefix(filePath, hostRelativePrefix); ok {
		return filepath.Join(baseDir, filepath.FromSlash(rest)), nil
	}
	return homedir.Expand(filePath)
}

// ImagePath returns the asset-relative path the raw image is placed at.
func ImagePath(source string) string {
	return path.Join("textures/images", filepath.Base(source))
}

// Export writes the descriptor of node's image and places the raw image when
// copying is enabled.
func Export(node *host.ShaderNode, opts Options) (Ref, error) {
	im := node.ImageRef
	if im == nil {
		return Ref{}, fmt.Errorf("%w: node %q", ErrNoImage, node.Name)
	}

	source, err := SourcePath(im.FilePath, opts.BaseDir)
	if err != nil {
		return Ref{}, fmt.Errorf("image %q: %w", im.Name, err)
	}
	if source == "" {
		source = im.Name
	}

	desc := Descriptor{
		Filtering:   "Trilinear",
		ImageFormat: imageFormat(source),
		TextureType: "2D",
		Compression: opts.Compression,
		Wrapping:    "ClampToEdge",
		Image:       opts.Layout.QualifiedImage(ImagePath(source)),
		SRGB:        im.Colorspace == "sRGB",
	}
	if node.Interpolation == "Closest" {
		desc.Filtering = "None"
	}
	if node.Extension == "REPEAT" {
		desc.Wrapping = "Repeat"
	}

	if err := opts.Layout.WriteJSON(DescriptorPath(im), desc); err != nil {
		return Ref{}, err
	}

	if opts.CopyImages {
		if err := place(im, source, opts.Layout); err != nil {
			logger.Warn("texture image not exported", zap.String("image", im.Name), zap.Error(err))
		}
	}

	return Ref{
		Name: Stem(im) + ".texture",
		Path: opts.Layout.Qualified(DescriptorPath(im)),
	}, nil
}

// imageFormat names the format by extension, sniffing the file when there is none.
func imageFormat(source string) string {
	if ext := strings.TrimPrefix(filepath.Ext(source), "."); ext != "" {
		return strings.ToUpper(ext)
	}
	kind, err := filetype.MatchFile(source)
	if err != nil || kind == filetype.Unknown {
		return "PNG"
	}
	return strings.ToUpper(kind.Extension)
}

// place copies the source image, falling back to encoding in-memory pixels.
func place(im *host.Image, source string, layout assets.Layout) error {
	dest, err := layout.SysPath(ImagePath(source))
	if err != nil {
		return err
	}

	err = copyFile(source, dest)
	if err == nil {
		logger.Info("image copied", zap.String("from", source), zap.String("to", dest))
		return nil
	}
	if !errors.Is(err, ErrMissingSource) {
		return err
	}

	if err := Encode(im, dest); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	logger.Info("image not found, saved from pixels", zap.String("from", source), zap.String("to", dest))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingSource, src)
		}
		return err
	}
	defer in.Close()

	if st, err := in.Stat(); err == nil && st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingSource, src)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

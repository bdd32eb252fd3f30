package batch

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/s2FileTools/internal/config"
	"github.com/goopsie/s2FileTools/pkg/export"
	"github.com/goopsie/s2FileTools/pkg/ntro"
	"github.com/goopsie/s2FileTools/pkg/resource"
	"github.com/goopsie/s2FileTools/pkg/texture"
)

// Kind is what a file was exported as.
type Kind string

const (
	KindTexture Kind = "texture"
	KindTree    Kind = "tree"
)

// ErrNothingToExport is returned for resources with neither texture data
// nor an introspection manifest.
var ErrNothingToExport = errors.New("nothing to export")

// Process exports one resource. Textures become images (or DDS), every
// other resource with an NTRO block becomes a text or YAML tree.
func Process(cfg *config.Config, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	r, err := resource.Open(path)
	if err == nil {
		res.Kind, res.Output, err = exportResource(cfg, r, path)
	}
	res.Err = err
	res.Elapsed = time.Since(start)
	return res
}

func exportResource(cfg *config.Config, r *resource.Resource, path string) (Kind, string, error) {
	if isTexture(path) {
		out := OutputPath(cfg, path, "."+cfg.Format)
		return KindTexture, out, ExportTexture(cfg, r, out)
	}
	if _, err := r.Find("NTRO"); err != nil {
		return "", "", ErrNothingToExport
	}

	ext := ".txt"
	if cfg.Tree == "yaml" {
		ext = ".yaml"
	}
	out := OutputPath(cfg, path, ext)
	tree, err := Tree(r, cfg.Tree)
	if err != nil {
		return KindTree, out, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return KindTree, out, err
	}
	return KindTree, out, os.WriteFile(out, tree, 0644)
}

func isTexture(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vtex_c")
}

// OutputPath maps an input file to its export path: the path relative to
// the input dir, re-rooted at the output dir. Texture exports drop the
// resource extension; trees keep it without the "_c" suffix so
// foo.vmat_c and foo.vmdl_c do not collide.
func OutputPath(cfg *config.Config, path, ext string) string {
	rel := filepath.Base(path)
	if cfg.InputDir != "" {
		if r, err := filepath.Rel(cfg.InputDir, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}

	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	if !isTexture(path) {
		base += strings.TrimSuffix(filepath.Ext(rel), "_c")
	}
	return filepath.Join(cfg.OutputDir, base+ext)
}

// Tree decodes the DATA block of r with its manifest and external
// references, rendered as "text" or "yaml".
func Tree(r *resource.Resource, format string) ([]byte, error) {
	m, err := r.Manifest()
	if err != nil {
		return nil, errors.Wrap(err, "manifest")
	}
	refs, err := r.ExternalReferences()
	if err != nil {
		return nil, errors.Wrap(err, "external references")
	}
	data, err := r.Find("DATA")
	if err != nil {
		return nil, err
	}

	reader := &ntro.Reader{Manifest: m, ExternalRefs: refs}
	node, err := reader.DecodeRoot(r.Data, data.Offset)
	if err != nil {
		return nil, err
	}
	if format == "yaml" {
		return yaml.Marshal(node)
	}
	return []byte(node.Text()), nil
}

// ExportTexture writes the texture of r to out in cfg.Format. DDS output
// keeps every mip; image formats decode the configured mip, clamped to the
// smallest one available.
func ExportTexture(cfg *config.Config, r *resource.Resource, out string) error {
	data, err := r.Block("DATA")
	if err != nil {
		return err
	}
	tail, err := r.Tail("DATA")
	if err != nil {
		return err
	}
	tex, err := texture.ParseHeader(data)
	if err != nil {
		return err
	}

	if cfg.Format == "dds" {
		dds, err := tex.DDS(tail)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		return os.WriteFile(out, dds, 0644)
	}

	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	mip := min(cfg.Mip, int(tex.MipLevels)-1)
	s, err := tex.Decode(tail, max(mip, 0))
	if err != nil {
		return err
	}
	img := export.Resize(export.ToNRGBA(s), cfg.MaxSize)
	return export.WriteFile(out, img, format)
}

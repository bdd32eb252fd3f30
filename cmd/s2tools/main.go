// Command s2tools inspects and exports compiled Source 2 resources.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/s2FileTools/internal/batch"
	"github.com/goopsie/s2FileTools/internal/config"
	"github.com/goopsie/s2FileTools/pkg/archive"
	"github.com/goopsie/s2FileTools/pkg/resource"
	"github.com/goopsie/s2FileTools/pkg/texture"
)

var (
	mode       string
	inputPath  string
	outputPath string
	configPath string
	format     string
	tree       string
	mip        int
	maxSize    int
	workers    int
	verbose    bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: ntro, texture, batch, pack, unpack, info")
	flag.StringVar(&inputPath, "input", "", "Input resource file (directory for batch)")
	flag.StringVar(&outputPath, "output", "", "Output file (directory for batch)")
	flag.StringVar(&configPath, "config", "", "Optional YAML config file")
	flag.StringVar(&format, "format", "", "Texture output: png, webp, tga, dds (default png)")
	flag.StringVar(&tree, "tree", "", "Structure output: text, yaml (default text)")
	flag.IntVar(&mip, "mip", -1, "Mip level to export (0 is largest)")
	flag.IntVar(&maxSize, "max-size", 0, "Downscale exported images to this many pixels per side")
	flag.IntVar(&workers, "workers", 0, "Batch workers (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "Debug logging and full manifest dumps")
}

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(log); err != nil {
		log.WithField("mode", mode).Errorf("%v", err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())
	entry := log.WithField("mode", mode)

	start := time.Now()
	switch mode {
	case "ntro":
		err = runNTRO(cfg)
	case "texture":
		err = runTexture(cfg, entry)
	case "batch":
		err = runBatch(cfg, entry)
	case "pack":
		err = runPack()
	case "unpack":
		err = runUnpack()
	case "info":
		err = runInfo()
	default:
		err = errors.Errorf("unknown mode: %s", mode)
	}
	if err == nil {
		entry.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("done")
	}
	return err
}

func validateFlags() error {
	if mode == "" {
		return errors.New("mode is required")
	}
	if inputPath == "" {
		return errors.New("input is required")
	}
	switch mode {
	case "pack", "unpack":
		if outputPath == "" {
			return errors.Errorf("%s mode requires -output", mode)
		}
	case "ntro", "texture", "batch", "info":
	default:
		return errors.New("mode must be one of ntro, texture, batch, pack, unpack, info")
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := config.Flags{
		Format:  format,
		Tree:    tree,
		Mip:     mip,
		MaxSize: maxSize,
		Workers: workers,
		Verbose: verbose,
	}
	if mode == "batch" {
		flags.InputDir = inputPath
		flags.OutputDir = outputPath
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runNTRO(cfg *config.Config) error {
	r, err := resource.Open(inputPath)
	if err != nil {
		return err
	}
	out, err := batch.Tree(r, cfg.Tree)
	if err != nil {
		return errors.Wrap(err, inputPath)
	}
	if outputPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(outputPath, out, 0644)
}

func runTexture(cfg *config.Config, log *logrus.Entry) error {
	r, err := resource.Open(inputPath)
	if err != nil {
		return err
	}
	out := outputPath
	if out == "" {
		base := filepath.Base(inputPath)
		out = base[:len(base)-len(filepath.Ext(base))] + "." + cfg.Format
	}
	if err := batch.ExportTexture(cfg, r, out); err != nil {
		return errors.Wrap(err, inputPath)
	}
	log.WithField("output", out).Info("texture exported")
	return nil
}

func runBatch(cfg *config.Config, log *logrus.Entry) error {
	paths, err := batch.Collect(cfg, cfg.InputDir)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"files":   len(paths),
		"workers": cfg.Workers,
		"output":  cfg.OutputDir,
	}).Info("starting batch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, res := range batch.Run(ctx, cfg, log, paths) {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func runPack() error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := archive.Encode(f, data); err != nil {
		return errors.Wrap(err, "pack")
	}
	return f.Close()
}

func runUnpack() error {
	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := archive.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "unpack")
	}
	return os.WriteFile(outputPath, data, 0644)
}

func runInfo() error {
	r, err := resource.Open(inputPath)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d bytes, header version %d, version %d\n", inputPath, r.FileSize, r.HeaderVersion, r.Version)
	for _, b := range r.Blocks {
		fmt.Printf("  %s\n", b)
	}

	if refs, err := r.ExternalReferences(); err == nil && len(refs) > 0 {
		fmt.Printf("External references (%d):\n", len(refs))
		out, _ := yaml.Marshal(refs)
		fmt.Print(string(out))
	}

	if m, err := r.Manifest(); err == nil {
		fmt.Printf("Manifest: %d structs, %d enums\n", len(m.Structs), len(m.Enums))
		for _, s := range m.Structs {
			fmt.Printf("  %s (id %d, %d bytes, %d fields)\n", s.Name, s.ID, s.DiskSize, len(s.Fields))
		}
		if verbose {
			spew.Dump(m)
		}
	}

	if filepath.Ext(inputPath) == ".vtex_c" {
		data, err := r.Block("DATA")
		if err != nil {
			return err
		}
		tex, err := texture.ParseHeader(data)
		if err != nil {
			return err
		}
		fmt.Println(tex)
		for level := 0; level < int(tex.MipLevels); level++ {
			w, h, _ := tex.MipDimensions(level)
			size, _ := tex.MipSize(level)
			fmt.Printf("  mip %d: %dx%d, %d bytes\n", level, w, h, size)
		}
	}
	return nil
}

// Command facet evaluates a scene script and prints the resulting render
// meshes, with computed normals, as JSON.
//
//	facet [-config facet.toml] [-kernel sdfx|manifold] [-o out.json] scene.lisp
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code: 0 on success, 1 when
// the scene reported errors, 2 on usage or setup problems.
func run(args []string, stdout, stderr io.Writer) int {
	fl := flag.NewFlagSet("facet", flag.ContinueOnError)
	fl.SetOutput(stderr)
	cfgPath := fl.String("config", "", "TOML configuration file (default "+config.DefaultFile+" when present)")
	kernelName := fl.String("kernel", "", "geometry kernel override: sdfx or manifold")
	outPath := fl.String("o", "", "write JSON to this file instead of stdout")
	fl.Usage = func() {
		fmt.Fprintf(stderr, "usage: facet [flags] scene.lisp\n")
		fl.PrintDefaults()
	}
	if err := fl.Parse(args); err != nil {
		return 2
	}
	if fl.NArg() != 1 {
		fl.Usage()
		return 2
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}
	if *kernelName != "" {
		cfg.Tessellation.Kernel = *kernelName
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "facet: %v\n", err)
			return 2
		}
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	source, err := os.ReadFile(fl.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "facet: %v\n", err)
		return 2
	}
	res := p.Evaluate(string(source))

	out := stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(stderr, "facet: %v\n", err)
			return 2
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "facet: write: %v\n", err)
		return 2
	}

	for _, w := range res.Warnings {
		logger.Warn(w.Message, "line", w.Line, "col", w.Col)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			logger.Error(e.Message, "line", e.Line, "col", e.Col)
		}
		return 1
	}
	return 0
}

// loadConfig reads path, or DefaultFile when path is empty and the file
// exists, or falls back to the defaults.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultFile)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

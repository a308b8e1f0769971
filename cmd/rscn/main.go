// rscn exports evaluated scenes to the rscn index and binary files and
// inspects existing exports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/jakubtomsu/raven/internal/config"
	"github.com/jakubtomsu/raven/internal/export"
	"github.com/jakubtomsu/raven/internal/logger"
	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export", "x":
		cmdExport(args)
	case "info", "i":
		cmdInfo(args)
	case "watch", "w":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rscn - scene exporter for the rscn format

Usage:
  rscn <command> [options]

Commands:
  export [options] <scene>    Export a .yaml/.gltf/.glb scene to <scene>.rscn and <scene>.rscn.bin
  info [-v] <file.rscn>       Show and validate an exported index and its binary
  watch [options] <scene>     Re-export whenever the scene file changes
  config [options] [path]     Write the effective config to path (default: user config dir)

Options (export, watch, config):
  -config <path>     Config file (default ./rscn.yaml or the user config dir)
  -o <path>          Output .rscn path
  -j <n>             Parallel mesh builders (0 = GOMAXPROCS)
  -strict-names      Fail on non-ASCII names instead of folding them
  -skip-oversized    Skip meshes with more than 65536 vertices instead of failing
  -debug             Debug logging with per-stage timings
  -log-file <path>   Also write logs to a rotating file

Examples:
  rscn export levels/forest.glb
  rscn export -o build/forest.rscn -j 4 levels/forest.yaml
  rscn info levels/forest.rscn
  rscn watch -debug levels/forest.yaml
  rscn config -j 4 -strict-names`)
}

// setup parses the shared flags, loads the config and starts logging.
func setup(name string, args []string) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rscn %s [options] <scene>\n", name)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs
}

func newExporter(cfg *config.Config) *export.Exporter {
	return export.New(export.Options{
		Workers:       cfg.Export.Workers,
		StrictNames:   cfg.Export.StrictNames,
		SkipOversized: cfg.Export.SkipOversized,
		Generator:     cfg.Export.Generator,
	}, logger.Named("export"))
}

// exportOnce loads the scene at path and writes its export.
func exportOnce(ctx context.Context, e *export.Exporter, path, out string) (*export.Result, error) {
	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	return e.ExportFile(ctx, s, out)
}

func cmdExport(args []string) {
	cfg, fs := setup("export", args)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := exportOnce(ctx, newExporter(cfg), fs.Arg(0), cfg.Export.Output)
	if err != nil {
		logger.Error("export failed", zap.String("scene", fs.Arg(0)), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	c := res.Container
	fmt.Printf("Images:   %d\n", len(c.Images))
	fmt.Printf("Meshes:   %d\n", len(c.Meshes))
	fmt.Printf("Splines:  %d\n", len(c.Splines))
	fmt.Printf("Objects:  %d\n", len(c.Objects))
	fmt.Printf("Binary:   %d bytes\n", c.Layout().End())
	if len(res.Warnings) > 0 {
		fmt.Printf("Warnings: %d\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("v", false, "List every table entry")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rscn info [-v] <file.rscn>")
		os.Exit(1)
	}

	path := fs.Arg(0)
	ix, err := rscn.ParseIndexFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	l := ix.Layout()
	fmt.Printf("Index:    %s\n", path)
	fmt.Printf("Version:  %s\n", ix.Version)
	for _, c := range ix.Comments {
		fmt.Printf("Comment:  %s\n", c)
	}
	fmt.Printf("Images:   %d\n", ix.ImageCount)
	fmt.Printf("Meshes:   %d (%d indices @%#x, %d vertices @%#x)\n", ix.MeshCount, ix.IndexCount, l.IndexOffset, ix.VertexCount, l.VertexOffset)
	fmt.Printf("Splines:  %d (%d points @%#x)\n", ix.SplineCount, ix.PointCount, l.SplineOffset)
	fmt.Printf("Objects:  %d\n", ix.ObjectCount)

	if *verbose {
		printTables(ix)
	}

	bin, err := os.ReadFile(export.BinaryPath(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := ix.Verify(bin); err != nil {
		fmt.Fprintf(os.Stderr, "Binary:   INVALID: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Binary:   ok (%d bytes)\n", len(bin))
}

func printTables(ix *rscn.Index) {
	fmt.Println()
	fmt.Println("Images:")
	for i, img := range ix.Images {
		fmt.Printf("  %3d %s\n", i, img)
	}
	fmt.Println("Meshes:")
	for i, m := range ix.Meshes {
		fmt.Printf("  %3d %-24s %6d idx %6d vtx\n", i, m.Name, m.IndexCount, m.VertexCount)
	}
	fmt.Println("Splines:")
	for i, s := range ix.Splines {
		fmt.Printf("  %3d %-24s %6d pts\n", i, s.Name, s.PointCount)
	}
	fmt.Println("Objects:")
	for i, o := range ix.Objects {
		fmt.Printf("  %3d %s %-24s parent=%d mesh=%d img=%d pos=%v\n", i, o.Kind.Tag(), o.Name, o.Parent, o.Mesh, o.Image, o.Position)
	}
}

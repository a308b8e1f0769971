// Package export turns an evaluated scene into an rscn container.
//
// One Export call is one pass. All tables and buffers live in a pass value
// that is created at the start of the call and dropped at the end; the
// Exporter itself only carries options and the logger, so it can be reused.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakubtomsu/raven/pkg/encoding"
	"github.com/jakubtomsu/raven/pkg/math"
	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

// Export errors.
var (
	ErrNoOutputPath = errors.New("no output path")
	ErrInvalidScene = errors.New("invalid scene")
	ErrMeshTooLarge = errors.New("mesh exceeds 16-bit index range")
	ErrNonASCIIName = errors.New("name is not printable ASCII")
)

// SuffixRule decides when spline names of a curve get an index suffix.
type SuffixRule int

const (
	// SuffixByTotal suffixes every spline name when the curve owns more
	// than one spline, counting splines that are skipped.
	SuffixByTotal SuffixRule = iota
	// SuffixByEmitted suffixes only when more than one spline is exported.
	SuffixByEmitted
)

// Options configures an Exporter.
type Options struct {
	Workers       int    // parallel mesh builders; <= 0 uses GOMAXPROCS
	StrictNames   bool   // fail on names that need ASCII folding instead of folding them
	SkipOversized bool   // skip meshes over MaxMeshVertices instead of failing
	Generator     string // overrides Scene.Generator when set
	SplineSuffix  SuffixRule
}

// Result is the outcome of one export pass.
type Result struct {
	Container *rscn.Container
	Warnings  []Warning
}

// Exporter runs export passes.
type Exporter struct {
	opts  Options
	log   *zap.Logger
	basis math.Basis
}

// New creates an Exporter. A nil logger discards output.
func New(opts Options, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		opts:  opts,
		log:   log,
		basis: math.ZUpToYUp,
	}
}

// pass holds the state of one export.
type pass struct {
	*Exporter
	c *rscn.Container

	images    map[string]int // image basename -> image index
	materials map[string]int // material name -> image index
	objects   map[string]int // normalized object name -> object index
	meshNames map[string]int // normalized mesh name -> mesh index, -1 while unassigned
	splines   map[string]int // spline name -> spline index

	warnings []Warning
}

// Export converts s into a container. Nothing is written to disk.
func (e *Exporter) Export(ctx context.Context, s *scene.Scene) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil scene", ErrInvalidScene)
	}

	p := &pass{
		Exporter:  e,
		c:         rscn.NewContainer(),
		images:    make(map[string]int),
		materials: make(map[string]int),
		objects:   make(map[string]int),
		meshNames: make(map[string]int),
		splines:   make(map[string]int),
	}
	if e.opts.StrictNames {
		if err := checkNames(s); err != nil {
			return nil, err
		}
	}

	p.c.Generator = s.Generator
	if e.opts.Generator != "" {
		p.c.Generator = e.opts.Generator
	}
	p.c.Generator = encoding.FoldASCII(p.c.Generator)

	start := time.Now()

	stop := p.stage("materials")
	p.collectImages(s.Materials)
	stop()

	stop = p.stage("objects")
	p.assignHandles(s.Objects)
	stop()

	stop = p.stage("meshes")
	err := p.exportMeshes(ctx, s.Objects)
	stop()
	if err != nil {
		return nil, err
	}

	stop = p.stage("curves")
	err = p.exportCurves(s.Objects)
	stop()
	if err != nil {
		return nil, err
	}

	stop = p.stage("hierarchy")
	p.exportObjects(s.Objects)
	p.breakCycles()
	stop()

	e.log.Info("scene exported",
		zap.String("scene", s.Path),
		zap.Int("images", len(p.c.Images)),
		zap.Int("meshes", len(p.c.Meshes)),
		zap.Int("splines", len(p.c.Splines)),
		zap.Int("objects", len(p.c.Objects)),
		zap.Int("warnings", len(p.warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{Container: p.c, Warnings: p.warnings}, nil
}

// stage logs the duration of one export stage when the returned func runs.
func (p *pass) stage(name string) func() {
	start := time.Now()
	return func() {
		p.log.Debug("stage done", zap.String("stage", name), zap.Duration("took", time.Since(start)))
	}
}

// name returns the join key of a display name. The key is always
// printable ASCII.
func (p *pass) name(s string) string {
	return encoding.FoldASCII(encoding.NormalizeName(s))
}

// checkNames rejects a scene with any name that would be changed by
// ASCII folding.
func checkNames(s *scene.Scene) error {
	check := func(what, name string) error {
		if !encoding.IsPrintableASCII(encoding.NormalizeName(name)) {
			return fmt.Errorf("%w: %s %q", ErrNonASCIIName, what, name)
		}
		return nil
	}
	if err := check("generator", s.Generator); err != nil {
		return err
	}
	for _, mat := range s.Materials {
		for _, img := range mat.Images {
			if err := check("image", encoding.ImageBasename(img)); err != nil {
				return err
			}
		}
	}
	for _, obj := range s.Objects {
		if err := check("object", obj.Name); err != nil {
			return err
		}
		if obj.Kind == scene.KindMesh && obj.Mesh != nil {
			if err := check("mesh", meshName(obj)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *pass) warn(w Warning) {
	p.warnings = append(p.warnings, w)
	fields := []zap.Field{zap.Stringer("kind", w.Kind), zap.String("name", w.Name), zap.String("reason", w.Reason)}
	if w.Kind == WarnUnsupportedSpline {
		p.log.Debug("entity skipped", fields...)
		return
	}
	p.log.Warn("entity skipped", fields...)
}

package export

import (
	"fmt"
	"strconv"

	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

// exportCurves appends the splines of every curve object. Bézier splines
// have no point representation in rscn and are skipped.
func (p *pass) exportCurves(objects []*scene.Object) error {
	for _, obj := range objects {
		if obj.Kind != scene.KindCurve {
			continue
		}
		if obj.Curve == nil {
			return fmt.Errorf("%w: curve object %s has no curve data", ErrInvalidScene, obj.Name)
		}

		base := p.name(obj.Name)
		suffix := p.suffixSplines(obj.Curve.Splines)

		for i, spl := range obj.Curve.Splines {
			name := base
			if suffix {
				name += strconv.Itoa(i)
			}
			if spl.Type == scene.SplineBezier {
				p.warn(Warning{Kind: WarnUnsupportedSpline, Name: name, Reason: "bezier splines are not exported"})
				continue
			}
			if _, dup := p.splines[name]; dup {
				p.warn(Warning{Kind: WarnDuplicateSpline, Name: name, Reason: "spline name already exported"})
				continue
			}

			points := make([]rscn.SplinePoint, len(spl.Points))
			for j, pt := range spl.Points {
				points[j] = rscn.SplinePoint{
					Pos:    p.basis.Point(pt.Co.Vec3()),
					Radius: pt.Radius,
					Tilt:   pt.Tilt,
				}
			}
			p.splines[name] = p.c.AddSpline(rscn.SplineEntry{Name: name, Points: points})
		}
	}
	return nil
}

// suffixSplines reports whether spline names of one curve need the index suffix.
func (p *pass) suffixSplines(splines []scene.Spline) bool {
	if p.opts.SplineSuffix == SuffixByEmitted {
		n := 0
		for _, s := range splines {
			if s.Type != scene.SplineBezier {
				n++
			}
		}
		return n > 1
	}
	return len(splines) > 1
}

package export

import "fmt"

// WarningKind classifies a skipped entity.
type WarningKind int

const (
	WarnDuplicateMesh WarningKind = iota
	WarnDuplicateSpline
	WarnUnsupportedSpline
	WarnOversizedMesh
	WarnDuplicateObject
	WarnParentCycle
)

// String returns a short name for the kind.
func (k WarningKind) String() string {
	switch k {
	case WarnDuplicateMesh:
		return "duplicate-mesh"
	case WarnDuplicateSpline:
		return "duplicate-spline"
	case WarnUnsupportedSpline:
		return "unsupported-spline"
	case WarnOversizedMesh:
		return "oversized-mesh"
	case WarnDuplicateObject:
		return "duplicate-object"
	case WarnParentCycle:
		return "parent-cycle"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning reports an entity left out of (or merged in) the export.
// The export still succeeds.
type Warning struct {
	Kind   WarningKind
	Name   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Name, w.Reason)
}

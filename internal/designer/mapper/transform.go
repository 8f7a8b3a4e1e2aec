package mapper

import (
	"errors"
	"fmt"
	"math"

	"circuitee/internal/designer/models"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Coordinate Mapper
// ============================================================

var ErrDegenerateReference = errors.New("reference points coincide in source coordinates")

// RotationSnap is the smallest rotation treated as a real misalignment.
// Anything below is reference-picking noise and becomes exactly zero.
const RotationSnap = math.Pi / 180

// PointSourceScale compensates the export's point-light positions, which are
// recorded at a different distance scale than linear lights and switches.
const PointSourceScale = 0.5

// Transform maps the export's planar coordinates (Y up, millimeters) onto the
// canvas (Y down, pixels).
type Transform struct {
	SourceOrigin models.Point `json:"sourceOrigin"`
	TargetOrigin models.Point `json:"targetOrigin"`
	Scale        float64      `json:"scale"`
	Rotation     float64      `json:"rotation"`
}

// Derive builds the similarity transform from two corresponding reference pairs.
func Derive(src1, src2, dst1, dst2 models.Point) (Transform, error) {
	srcDX, srcDY := src2.X-src1.X, src2.Y-src1.Y
	dstDX, dstDY := dst2.X-dst1.X, dst2.Y-dst1.Y

	srcLen := math.Hypot(srcDX, srcDY)
	if srcLen == 0 || math.IsNaN(srcLen) || math.IsInf(srcLen, 0) {
		return Transform{}, fmt.Errorf("source distance %v: %w", srcLen, ErrDegenerateReference)
	}

	scale := math.Hypot(dstDX, dstDY) / srcLen
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return Transform{}, fmt.Errorf("scale %v: %w", scale, ErrDegenerateReference)
	}

	// Source Y grows upward, so its delta is mirrored before taking the angle.
	rotation := normalizeAngle(math.Atan2(dstDY, dstDX) - math.Atan2(-srcDY, srcDX))
	if math.Abs(rotation) < RotationSnap {
		rotation = 0
	}

	return Transform{
		SourceOrigin: src1,
		TargetOrigin: dst1,
		Scale:        scale,
		Rotation:     rotation,
	}, nil
}

func (t Transform) Apply(p models.Point) models.Point {
	return TransformPoint(p, t.SourceOrigin, t.TargetOrigin, t.Scale, t.Rotation)
}

// RotationDegrees is the rotation in degrees, for reporting.
func (t Transform) RotationDegrees() float64 {
	return t.Rotation * 180 / math.Pi
}

// TransformPoint translates p relative to srcOrigin, flips Y, scales, rotates
// and translates onto dstOrigin.
func TransformPoint(p, srcOrigin, dstOrigin models.Point, scale, rotation float64) models.Point {
	rel := mat.NewVecDense(2, []float64{
		(p.X - srcOrigin.X) * scale,
		-(p.Y - srcOrigin.Y) * scale,
	})

	var out mat.VecDense
	out.MulVec(rotationMatrix(rotation), rel)

	return models.Point{
		X: out.AtVec(0) + dstOrigin.X,
		Y: out.AtVec(1) + dstOrigin.Y,
	}
}

func rotationMatrix(theta float64) *mat.Dense {
	if theta == 0 {
		return mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	}
	sin, cos := math.Sincos(theta)
	return mat.NewDense(2, 2, []float64{
		cos, -sin,
		sin, cos,
	})
}

// normalizeAngle folds an angle into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// ============================================================
// Per-kind placement
// ============================================================

// PlacePoint maps a point-light position, applying the point source compensation.
// The factor scales the absolute export coordinate, the same frame in which the
// exporter wrote it, so with a reference origin away from zero the point also
// moves relative to that origin.
func (t Transform) PlacePoint(p models.Point) models.Point {
	return t.Apply(models.Point{X: p.X * PointSourceScale, Y: p.Y * PointSourceScale})
}

// PlaceLinear maps both endpoints of a linear light.
func (t Transform) PlaceLinear(start, end models.Point) (models.Point, models.Point) {
	return t.Apply(start), t.Apply(end)
}

func (t Transform) PlaceSwitch(p models.Point) models.Point {
	return t.Apply(p)
}

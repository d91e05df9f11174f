package studio

import "math"

// Point3 is a point in internal units.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BBox is an axis-aligned bounding box in internal units.
type BBox struct {
	Min Point3 `json:"min"`
	Max Point3 `json:"max"`
}

func bboxOf(minX, minY, minZ, maxX, maxY, maxZ float64) BBox {
	return BBox{
		Min: Point3{X: minX, Y: minY, Z: minZ},
		Max: Point3{X: maxX, Y: maxY, Z: maxZ},
	}
}

func (b BBox) union(other BBox) BBox {
	return bboxOf(
		math.Min(b.Min.X, other.Min.X),
		math.Min(b.Min.Y, other.Min.Y),
		math.Min(b.Min.Z, other.Min.Z),
		math.Max(b.Max.X, other.Max.X),
		math.Max(b.Max.Y, other.Max.Y),
		math.Max(b.Max.Z, other.Max.Z),
	)
}

func (b BBox) intersect(other BBox) BBox {
	out := bboxOf(
		math.Max(b.Min.X, other.Min.X),
		math.Max(b.Min.Y, other.Min.Y),
		math.Max(b.Min.Z, other.Min.Z),
		math.Min(b.Max.X, other.Max.X),
		math.Min(b.Max.Y, other.Max.Y),
		math.Min(b.Max.Z, other.Max.Z),
	)
	if out.Min.X > out.Max.X || out.Min.Y > out.Max.Y || out.Min.Z > out.Max.Z {
		return BBox{}
	}
	return out
}

// rotatedAboutZ returns the bounding box of this box rotated by angle
// radians around the Z axis.
func (b BBox) rotatedAboutZ(angle float64) BBox {
	sin, cos := math.Sincos(angle)
	corners := [4][2]float64{
		{b.Min.X, b.Min.Y},
		{b.Min.X, b.Max.Y},
		{b.Max.X, b.Min.Y},
		{b.Max.X, b.Max.Y},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x := c[0]*cos - c[1]*sin
		y := c[0]*sin + c[1]*cos
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return bboxOf(minX, minY, b.Min.Z, maxX, maxY, b.Max.Z)
}

// Body is one solid body.
type Body struct {
	Name    string `json:"name"`
	Solid   bool   `json:"isSolid"`
	Visible bool   `json:"isVisible"`
	BBox    BBox   `json:"bbox"`
	Holes   []Hole `json:"-"`
}

// Hole records a drilled hole feature on a body.
type Hole struct {
	X           float64
	Y           float64
	Diameter    float64
	Depth       float64
	Countersink bool
}

// topZ is the Z coordinate of the body's top planar face. All bodies in
// this host are box-bounded, so the top face is always planar.
func (b *Body) topZ() float64 {
	return b.BBox.Max.Z
}

package scene

import (
	"math"

	"github.com/achilleasa/rtbvh/types"
)

// A triangle primitive. Triangles are plain values; two triangles with the
// same vertices are indistinguishable.
type Triangle struct {
	A, B, C types.Vec3
}

// Define a triangle from its three vertices.
func NewTriangle(a, b, c types.Vec3) Triangle {
	return Triangle{A: a, B: b, C: c}
}

// Get the axis-aligned bounding box that encloses the triangle vertices.
func (t Triangle) BBox() BBox {
	return BBox{
		Min: types.MinVec3(types.MinVec3(t.A, t.B), t.C),
		Max: types.MaxVec3(types.MaxVec3(t.A, t.B), t.C),
	}
}

// Get the triangle centroid.
func (t Triangle) Center() types.Vec3 {
	return t.A.Add(t.B).Add(t.C).Mul(1.0 / 3.0)
}

// An axis-aligned bounding box.
type BBox struct {
	Min types.Vec3
	Max types.Vec3
}

// Return an inverted bbox that acts as the identity element for Union.
func EmptyBBox() BBox {
	return BBox{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Calculate the bbox of a triangle list.
func BBoxOf(triangles []Triangle) BBox {
	bbox := EmptyBBox()
	for _, tri := range triangles {
		bbox = bbox.Union(tri.BBox())
	}
	return bbox
}

// Get the bbox enclosing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Get the bbox side lengths.
func (b BBox) Extent() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Returns true if other lies entirely within b. Touching faces count as
// contained.
func (b BBox) Contains(other BBox) bool {
	for i := 0; i < 3; i++ {
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Get the axis with the largest extent. Ties are resolved in x, y, z order.
func (b BBox) LongestAxis() types.Axis {
	side := b.Extent()
	axis := types.XAxis
	if side[types.YAxis] > side[axis] {
		axis = types.YAxis
	}
	if side[types.ZAxis] > side[axis] {
		axis = types.ZAxis
	}
	return axis
}

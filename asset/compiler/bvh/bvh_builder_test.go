package bvh

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/types"
)

// Generate count unit triangles laid out along the x axis so that
// triangle i spans x in [i, i+1].
func unitTriangles(count int) []scene.Triangle {
	tris := make([]scene.Triangle, count)
	for i := range tris {
		x := float32(i)
		tris[i] = scene.NewTriangle(types.XYZ(x, 0, 0), types.XYZ(x+1, 0, 0), types.XYZ(x, 1, 0))
	}
	return tris
}

// Generate count random triangles inside a 100 unit cube.
func randomTriangles(seed int64, count int) []scene.Triangle {
	rng := rand.New(rand.NewSource(seed))
	point := func() types.Vec3 {
		return types.XYZ(rng.Float32()*100, rng.Float32()*100, rng.Float32()*100)
	}

	tris := make([]scene.Triangle, count)
	for i := range tris {
		origin := point()
		tris[i] = scene.NewTriangle(
			origin,
			origin.Add(types.XYZ(rng.Float32()*5, rng.Float32()*5, rng.Float32()*5)),
			origin.Add(types.XYZ(rng.Float32()*5, rng.Float32()*5, rng.Float32()*5)),
		)
	}
	return tris
}

func expectPanic(t *testing.T, expMsg string, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic with %q", expMsg)
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, expMsg) {
			t.Fatalf("expected panic message to contain %q; got %v", expMsg, r)
		}
	}()
	fn()
}

func TestBuildPreconditions(t *testing.T) {
	expectPanic(t, "at least 2 triangles; got 0", func() { Build(nil, DefaultMaxDepth) })
	expectPanic(t, "at least 2 triangles; got 1", func() { Build(unitTriangles(1), DefaultMaxDepth) })
	expectPanic(t, "invalid max depth -1", func() { Build(unitTriangles(4), -1) })
}

func TestBuildSingleSplit(t *testing.T) {
	tris := unitTriangles(16)
	root := Build(tris, 2)

	expBBox := scene.BBox{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{16, 1, 0}}
	if root.BBox != expBBox {
		t.Fatalf("expected root bbox to be %v; got %v", expBBox, root.BBox)
	}
	if root.IsLeaf() {
		t.Fatal("expected root to be split")
	}

	for idx, child := range []*Node{root.Left, root.Right} {
		if !child.IsLeaf() {
			t.Fatalf("[child %d] expected child to be a leaf", idx)
		}
		if len(child.Triangles) != 8 {
			t.Fatalf("[child %d] expected child to hold 8 triangles; got %d", idx, len(child.Triangles))
		}
		if !reflect.DeepEqual(child.Triangles, tris[idx*8:(idx+1)*8]) {
			t.Fatalf("[child %d] unexpected triangle assignment", idx)
		}
	}

	expLeftBBox := scene.BBox{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{8, 1, 0}}
	if root.Left.BBox != expLeftBBox {
		t.Fatalf("expected left bbox to be %v; got %v", expLeftBBox, root.Left.BBox)
	}

	if depth := root.Depth(); depth != 1 {
		t.Fatalf("expected tree depth to be 1; got %d", depth)
	}
}

func TestBuildLeafThreshold(t *testing.T) {
	// Fewer than MinLeafTriangles triangles never get split
	root := Build(unitTriangles(MinLeafTriangles-1), DefaultMaxDepth)
	if !root.IsLeaf() {
		t.Fatal("expected root to be a leaf")
	}

	// With a generous depth budget, every leaf ends up below the threshold
	root = Build(unitTriangles(64), DefaultMaxDepth)
	stats := root.Stats()
	if stats.Leafs != 16 {
		t.Fatalf("expected 16 leafs; got %d", stats.Leafs)
	}
	if stats.MaxLeafSize != 4 {
		t.Fatalf("expected max leaf size to be 4; got %d", stats.MaxLeafSize)
	}
	if stats.Nodes != 31 {
		t.Fatalf("expected 31 nodes; got %d", stats.Nodes)
	}
	if stats.Height != 4 || root.Depth() != 4 {
		t.Fatalf("expected height 4; got stats %d, depth %d", stats.Height, root.Depth())
	}
}

func TestBuildOddSplit(t *testing.T) {
	root := Build(unitTriangles(9), DefaultMaxDepth)
	if len(root.Left.Triangles) != 4 || len(root.Right.Triangles) != 5 {
		t.Fatalf("expected a 4/5 split; got %d/%d", len(root.Left.Triangles), len(root.Right.Triangles))
	}
}

func TestBuildCutAxis(t *testing.T) {
	// Stack triangles along the z axis
	tris := make([]scene.Triangle, 8)
	for i := range tris {
		z := float32(7 - i)
		tris[i] = scene.NewTriangle(types.XYZ(0, 0, z), types.XYZ(1, 0, z), types.XYZ(0, 1, z+0.5))
	}

	root := Build(tris, DefaultMaxDepth)
	for _, tri := range root.Left.Triangles {
		if tri.A[2] >= 4 {
			t.Fatalf("expected left child to hold the triangles closest to the origin along z; got %v", tri)
		}
	}
	if root.Left.BBox.Max[2] != 3.5 || root.Right.BBox.Min[2] != 4 {
		t.Fatalf("unexpected child bboxes: %v, %v", root.Left.BBox, root.Right.BBox)
	}
}

func TestBuildStableTies(t *testing.T) {
	// All centroids share the same x coordinate
	tris := make([]scene.Triangle, 8)
	for i := range tris {
		w := float32(i + 1)
		y := float32(i) * 0.01
		tris[i] = scene.NewTriangle(types.XYZ(-w, y, 0), types.XYZ(w, y, 0), types.XYZ(0, y+0.001, 0))
	}

	root := Build(tris, 2)
	if !reflect.DeepEqual(root.Left.Triangles, tris[:4]) || !reflect.DeepEqual(root.Right.Triangles, tris[4:]) {
		t.Fatal("expected triangles with equal centroids to keep their input order")
	}
}

func TestBuildDegenerateGeometry(t *testing.T) {
	tri := scene.NewTriangle(types.XYZ(1, 1, 1), types.XYZ(1, 1, 1), types.XYZ(1, 1, 1))
	tris := make([]scene.Triangle, 32)
	for i := range tris {
		tris[i] = tri
	}

	root := Build(tris, DefaultMaxDepth)
	if root.BBox.Min != root.BBox.Max {
		t.Fatalf("expected a zero-volume root bbox; got %v", root.BBox)
	}
	if stats := root.Stats(); stats.Leafs != 8 {
		t.Fatalf("expected 8 leafs; got %d", stats.Leafs)
	}
}

func TestBuildDepthBound(t *testing.T) {
	tris := randomTriangles(42, 500)
	for maxDepth := 0; maxDepth <= 12; maxDepth++ {
		root := Build(tris, maxDepth)
		if depth := root.Depth(); depth > maxDepth {
			t.Fatalf("[maxDepth %d] expected tree depth <= %d; got %d", maxDepth, maxDepth, depth)
		}
	}
}

func TestBuildDefaultHeightLimit(t *testing.T) {
	root := Build(unitTriangles(8192), DefaultMaxDepth)
	stats := root.Stats()
	if stats.Height != DefaultMaxDepth-1 || root.Depth() != DefaultMaxDepth-1 {
		t.Fatalf("expected height %d; got stats height %d, depth %d", DefaultMaxDepth-1, stats.Height, root.Depth())
	}
	if stats.Leafs != 512 || stats.MaxLeafSize != 16 {
		t.Fatalf("expected 512 leafs with 16 triangles each; got %+v", stats)
	}

	for _, maxDepth := range []int{0, 1} {
		if root := Build(unitTriangles(64), maxDepth); !root.IsLeaf() {
			t.Fatalf("[maxDepth %d] expected a single leaf", maxDepth)
		}
	}
}

func TestBuildDeterminism(t *testing.T) {
	tris := randomTriangles(7, 300)
	a := Build(tris, DefaultMaxDepth)
	b := Build(tris, DefaultMaxDepth)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected two builds of the same input to produce identical trees")
	}
}

func TestBuildDoesNotRetainInput(t *testing.T) {
	tris := unitTriangles(4)
	root := Build(tris, DefaultMaxDepth)
	tris[0] = scene.Triangle{}
	if root.Triangles[0] == tris[0] {
		t.Fatal("expected the tree to own a copy of the input triangles")
	}
}

func TestNodeDepth(t *testing.T) {
	leaf := func() *Node { return &Node{} }

	specs := []struct {
		node *Node
		exp  int
	}{
		{nil, 0},
		{leaf(), 0},
		{&Node{Left: leaf(), Right: leaf()}, 1},
		{&Node{Left: leaf()}, 1},
		{&Node{Right: &Node{Left: leaf(), Right: leaf()}}, 2},
		{&Node{Left: leaf(), Right: &Node{Left: leaf(), Right: &Node{Left: leaf(), Right: leaf()}}}, 3},
	}

	for idx, s := range specs {
		if got := s.node.Depth(); got != s.exp {
			t.Fatalf("[spec %d] expected depth %d; got %d", idx, s.exp, got)
		}
	}
}

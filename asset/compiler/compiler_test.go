package compiler

import (
	"math"
	"strings"
	"testing"

	"github.com/achilleasa/rtbvh/asset/compiler/bvh"
	"github.com/achilleasa/rtbvh/asset/compiler/input"
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/types"
	"github.com/go-gl/mathgl/mgl32"
)

func stripScene(count int) *input.Scene {
	mesh := input.NewMesh("strip")
	for i := 0; i < count; i++ {
		x := float32(i)
		mesh.Add(scene.NewTriangle(types.XYZ(x, 0, 0), types.XYZ(x+1, 0, 0), types.XYZ(x, 1, 0)))
	}
	return &input.Scene{Meshes: []*input.Mesh{mesh}}
}

func TestCompile(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 2

	sc, err := Compile(stripScene(16), opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.BvhNodeList) != 3 || len(sc.TriangleList) != 16 {
		t.Fatalf("expected 3 nodes and 16 triangles; got %d, %d", len(sc.BvhNodeList), len(sc.TriangleList))
	}

	stats := sc.Stats
	if stats.InputTriangles != 16 || stats.Nodes != 3 || stats.Leafs != 2 || stats.Height != 1 || stats.MaxLeafSize != 8 {
		t.Fatalf("unexpected build stats: %+v", stats)
	}
	if stats.DuplicateTriangles != 0 {
		t.Fatalf("expected no duplicate triangles; got %d", stats.DuplicateTriangles)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(stripScene(1), DefaultOptions())
	expError := "compiler: scene must contain at least 2 triangles; got 1"
	if err == nil || err.Error() != expError {
		t.Fatalf("expected error %q; got %v", expError, err)
	}

	opts := DefaultOptions()
	opts.MaxDepth = -3
	_, err = Compile(stripScene(16), opts)
	expError = "compiler: invalid max depth -3"
	if err == nil || err.Error() != expError {
		t.Fatalf("expected error %q; got %v", expError, err)
	}
}

func TestCompileRejectsNonFiniteVertices(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(-1))

	specs := []scene.Triangle{
		scene.NewTriangle(types.XYZ(nan, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)),
		scene.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, inf, 0), types.XYZ(0, 1, 0)),
		scene.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, nan)),
	}

	for idx, tri := range specs {
		parsed := stripScene(64)
		parsed.Meshes[0].Add(tri)

		sc, err := Compile(parsed, DefaultOptions())
		expError := "compiler: triangle 64 has a non-finite vertex"
		if err == nil || err.Error() != expError {
			t.Fatalf("[spec %d] expected error %q; got %v", idx, expError, err)
		}
		if sc != nil {
			t.Fatalf("[spec %d] expected no scene to be returned", idx)
		}
	}

	// Transforms that overflow float32 are rejected too
	opts := DefaultOptions()
	opts.Transform = mgl32.Scale3D(math.MaxFloat32, 1, 1)
	_, err := Compile(stripScene(16), opts)
	if err == nil || !strings.Contains(err.Error(), "has a non-finite vertex") {
		t.Fatalf("expected a non-finite vertex error; got %v", err)
	}
}

func TestCompileTransform(t *testing.T) {
	opts := DefaultOptions()
	opts.Transform = mgl32.Translate3D(0, 10, 0).Mul4(mgl32.Scale3D(2, 2, 2))

	sc, err := Compile(stripScene(16), opts)
	if err != nil {
		t.Fatal(err)
	}

	root := sc.BvhNodeList[0]
	expBBox := scene.BBox{Min: types.Vec3{0, 10, 0}, Max: types.Vec3{32, 12, 0}}
	if root.BBox() != expBBox {
		t.Fatalf("expected root bbox %v; got %v", expBBox, root.BBox())
	}
}

func TestCompilePartitionAssignment(t *testing.T) {
	opts := DefaultOptions()
	opts.Assignment = bvh.PartitionAssignment

	parsed := stripScene(100)
	parsed.Meshes = append(parsed.Meshes, stripScene(50).Meshes...)

	sc, err := Compile(parsed, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.TriangleList) != 150 {
		t.Fatalf("expected 150 triangles; got %d", len(sc.TriangleList))
	}

	if report := sc.Report(); !strings.Contains(report, "Input triangles") {
		t.Fatalf("expected report to include input triangle count; got:\n%s", report)
	}
}

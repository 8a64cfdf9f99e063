package input

import (
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// A named group of triangles that shares a model transformation.
type Mesh struct {
	Name      string
	Triangles []scene.Triangle

	// A transformation for positioning the mesh in world space.
	Transform mgl32.Mat4
}

// Create an empty mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Triangles: make([]scene.Triangle, 0),
		Transform: mgl32.Ident4(),
	}
}

// Append a triangle to the mesh.
func (m *Mesh) Add(tri scene.Triangle) {
	m.Triangles = append(m.Triangles, tri)
}

// Get the mesh triangles in world space.
func (m *Mesh) WorldTriangles() []scene.Triangle {
	out := make([]scene.Triangle, len(m.Triangles))
	identity := m.Transform == mgl32.Ident4()
	for i, tri := range m.Triangles {
		if identity {
			out[i] = tri
			continue
		}
		out[i] = scene.NewTriangle(tri.A.Transform(m.Transform), tri.B.Transform(m.Transform), tri.C.Transform(m.Transform))
	}
	return out
}

// The raw scene produced by a scene reader.
type Scene struct {
	Meshes []*Mesh
}

// Count the triangles across all meshes.
func (sc *Scene) TriangleCount() int {
	count := 0
	for _, m := range sc.Meshes {
		count += len(m.Triangles)
	}
	return count
}

// Collect the world-space triangles of all meshes in mesh order.
func (sc *Scene) Triangles() []scene.Triangle {
	out := make([]scene.Triangle, 0, sc.TriangleCount())
	for _, m := range sc.Meshes {
		out = append(out, m.WorldTriangles()...)
	}
	return out
}

package reader

import (
	"io"
	"time"

	"github.com/achilleasa/rtbvh/asset"
	"github.com/achilleasa/rtbvh/asset/compiler"
	"github.com/achilleasa/rtbvh/asset/compiler/input"
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/log"
	"github.com/achilleasa/rtbvh/types"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
)

// A reader for procedural scenes described by lua scripts. Scripts emit
// geometry by calling the following globals:
//
//	mesh(name)                        start a new mesh
//	triangle(ax,ay,az, bx,by,bz, cx,cy,cz)
//	quad(ax,ay,az, bx,by,bz, cx,cy,cz, dx,dy,dz)
//	translate(x,y,z)                  append a translation to the mesh transform
//	scale(x,y,z)                      append a scale to the mesh transform
//	rotate(degrees, x,y,z)            append a rotation to the mesh transform
type luaSceneReader struct {
	logger log.Logger

	// Options for compiling the parsed scene.
	opts compiler.Options

	// The parsed scene.
	rawScene *input.Scene

	// The mesh receiving emitted geometry.
	curMesh *input.Mesh
}

// Create a new lua scene reader.
func newLuaReader(opts compiler.Options) *luaSceneReader {
	return &luaSceneReader{
		logger:   log.New("lua scene reader"),
		opts:     opts,
		rawScene: &input.Scene{},
	}
}

// Read scene definition.
func (r *luaSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`running scene script "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	r.logger.Noticef("generated %d meshes in %d ms", len(r.rawScene.Meshes), time.Since(start).Nanoseconds()/1e6)
	return compiler.Compile(r.rawScene, r.opts)
}

// Execute the script and collect the emitted meshes.
func (r *luaSceneReader) parse(res *asset.Resource) error {
	src, err := io.ReadAll(res)
	if err != nil {
		return errors.Wrapf(err, "lua: could not read %s", res.Path())
	}

	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("mesh", L.NewFunction(r.luaMesh))
	L.SetGlobal("triangle", L.NewFunction(r.luaTriangle))
	L.SetGlobal("quad", L.NewFunction(r.luaQuad))
	L.SetGlobal("translate", L.NewFunction(r.luaTranslate))
	L.SetGlobal("scale", L.NewFunction(r.luaScale))
	L.SetGlobal("rotate", L.NewFunction(r.luaRotate))

	if err = L.DoString(string(src)); err != nil {
		return errors.Wrapf(err, "lua: script %s failed", res.Path())
	}

	// Drop empty meshes
	meshes := r.rawScene.Meshes[:0]
	for _, m := range r.rawScene.Meshes {
		if len(m.Triangles) == 0 {
			r.logger.Warningf("skipping mesh %q with no triangles", m.Name)
			continue
		}
		meshes = append(meshes, m)
	}
	r.rawScene.Meshes = meshes

	return nil
}

// Get the mesh receiving geometry, creating a default one if needed.
func (r *luaSceneReader) mesh() *input.Mesh {
	if r.curMesh == nil {
		r.startMesh("default")
	}
	return r.curMesh
}

func (r *luaSceneReader) startMesh(name string) {
	r.curMesh = input.NewMesh(name)
	r.rawScene.Meshes = append(r.rawScene.Meshes, r.curMesh)
}

// Read a point from three consecutive numeric arguments starting at index.
func checkVec3(L *lua.LState, index int) types.Vec3 {
	return types.XYZ(
		float32(L.CheckNumber(index)),
		float32(L.CheckNumber(index+1)),
		float32(L.CheckNumber(index+2)),
	)
}

func (r *luaSceneReader) luaMesh(L *lua.LState) int {
	r.startMesh(L.CheckString(1))
	return 0
}

func (r *luaSceneReader) luaTriangle(L *lua.LState) int {
	r.mesh().Add(scene.NewTriangle(checkVec3(L, 1), checkVec3(L, 4), checkVec3(L, 7)))
	return 0
}

func (r *luaSceneReader) luaQuad(L *lua.LState) int {
	a, b, c, d := checkVec3(L, 1), checkVec3(L, 4), checkVec3(L, 7), checkVec3(L, 10)
	m := r.mesh()
	m.Add(scene.NewTriangle(a, b, c))
	m.Add(scene.NewTriangle(a, c, d))
	return 0
}

func (r *luaSceneReader) luaTranslate(L *lua.LState) int {
	v := checkVec3(L, 1)
	m := r.mesh()
	m.Transform = m.Transform.Mul4(mgl32.Translate3D(v[0], v[1], v[2]))
	return 0
}

func (r *luaSceneReader) luaScale(L *lua.LState) int {
	v := checkVec3(L, 1)
	m := r.mesh()
	m.Transform = m.Transform.Mul4(mgl32.Scale3D(v[0], v[1], v[2]))
	return 0
}

func (r *luaSceneReader) luaRotate(L *lua.LState) int {
	angle := float32(L.CheckNumber(1))
	axis := checkVec3(L, 2)
	m := r.mesh()
	m.Transform = m.Transform.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(angle), mgl32.Vec3{axis[0], axis[1], axis[2]}.Normalize()))
	return 0
}

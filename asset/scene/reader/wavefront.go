package reader

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/achilleasa/rtbvh/asset"
	"github.com/achilleasa/rtbvh/asset/compiler"
	"github.com/achilleasa/rtbvh/asset/compiler/input"
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/log"
	"github.com/achilleasa/rtbvh/types"
	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
)

type wavefrontSceneReader struct {
	logger log.Logger

	// Options for compiling the parsed scene.
	opts compiler.Options

	// The parsed scene.
	rawScene *input.Scene
}

// Create a new wavefront scene reader.
func newWavefrontReader(opts compiler.Options) *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:   log.New("wavefront scene reader"),
		opts:     opts,
		rawScene: &input.Scene{},
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	r.logger.Noticef("parsed %d meshes in %d ms", len(r.rawScene.Meshes), time.Since(start).Nanoseconds()/1e6)

	// Compile scene into an optimized, gpu-friendly format
	return compiler.Compile(r.rawScene, r.opts)
}

// Decode the wavefront payload and convert each object into a mesh. Faces
// with more than three vertices are triangulated as fans.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	data, err := io.ReadAll(res)
	if err != nil {
		return errors.Wrapf(err, "wavefront: could not read %s", res.Path())
	}

	dec, err := obj.DecodeReader(bytes.NewReader(data), r.materialLib(data, res))
	if err != nil {
		return errors.Wrapf(err, "wavefront: could not decode %s", res.Path())
	}
	for _, warning := range dec.Warnings {
		r.logger.Warning(warning)
	}

	vertexCount := len(dec.Vertices) / 3
	vertexAt := func(index int) (types.Vec3, error) {
		if index < 0 || index >= vertexCount {
			return types.Vec3{}, errors.Newf("vertex index %d out of bounds", index)
		}
		return types.XYZ(dec.Vertices[index*3], dec.Vertices[index*3+1], dec.Vertices[index*3+2]), nil
	}

	for _, object := range dec.Objects {
		mesh := input.NewMesh(object.Name)
		for faceIndex, face := range object.Faces {
			if len(face.Vertices) < 3 {
				return errors.Newf("wavefront: object %q face %d has %d vertices", object.Name, faceIndex, len(face.Vertices))
			}

			var verts [3]types.Vec3
			if verts[0], err = vertexAt(face.Vertices[0]); err != nil {
				return errors.Wrapf(err, "wavefront: object %q face %d", object.Name, faceIndex)
			}
			for i := 1; i+1 < len(face.Vertices); i++ {
				if verts[1], err = vertexAt(face.Vertices[i]); err != nil {
					return errors.Wrapf(err, "wavefront: object %q face %d", object.Name, faceIndex)
				}
				if verts[2], err = vertexAt(face.Vertices[i+1]); err != nil {
					return errors.Wrapf(err, "wavefront: object %q face %d", object.Name, faceIndex)
				}
				mesh.Add(scene.NewTriangle(verts[0], verts[1], verts[2]))
			}
		}

		if len(mesh.Triangles) == 0 {
			r.logger.Warningf("skipping object %q with no faces", object.Name)
			continue
		}
		r.logger.Infof(`parsed object "%s" (%d triangles)`, mesh.Name, len(mesh.Triangles))
		r.rawScene.Meshes = append(r.rawScene.Meshes, mesh)
	}

	return nil
}

// Locate and load the material library referenced by the scene. Materials
// do not affect partitioning, so a missing library only produces a warning.
func (r *wavefrontSceneReader) materialLib(data []byte, res *asset.Resource) io.Reader {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "mtllib ") {
			continue
		}

		libName := strings.TrimSpace(strings.TrimPrefix(line, "mtllib "))
		libRes, err := asset.NewResource(libName, res)
		if err != nil {
			r.logger.Warningf("could not load material library %q: %v", libName, err)
			break
		}
		defer libRes.Close()

		libData, err := io.ReadAll(libRes)
		if err != nil {
			r.logger.Warningf("could not read material library %q: %v", libName, err)
			break
		}
		return bytes.NewReader(libData)
	}

	return strings.NewReader("")
}

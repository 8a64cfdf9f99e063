package reader

import (
	"strings"

	"github.com/achilleasa/rtbvh/asset"
	"github.com/achilleasa/rtbvh/asset/compiler"
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/cockroachdb/errors"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from file. Source scenes (.obj, .lua) are compiled using opts;
// compiled scenes (.zip) are loaded as-is.
func ReadScene(filename string, opts compiler.Options) (*scene.Scene, error) {
	reader, err := readerFor(filename, opts)
	if err != nil {
		return nil, err
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}

// Select reader based on file extension.
func readerFor(filename string, opts compiler.Options) (Reader, error) {
	switch {
	case strings.HasSuffix(filename, ".obj"):
		return newWavefrontReader(opts), nil
	case strings.HasSuffix(filename, ".lua"):
		return newLuaReader(opts), nil
	case strings.HasSuffix(filename, ".zip"):
		return newZipSceneReader(), nil
	}
	return nil, errors.Newf("readScene: unsupported file format for %q", filename)
}

package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"io"
	"time"

	"github.com/achilleasa/rtbvh/asset"
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/asset/scene/writer"
	"github.com/achilleasa/rtbvh/log"
	"github.com/cockroachdb/errors"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read scene definition from zip file.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, errors.Wrapf(err, "zipSceneReader: could not read %s", sceneRes.Path())
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrapf(err, "zipSceneReader: %s is not a valid archive", sceneRes.Path())
	}

	sc := &scene.Scene{}
	var foundNodes, foundTriangles bool
	for _, f := range zr.File {
		switch f.Name {
		case writer.NodesFile, writer.TrianglesFile, writer.StatsFile:
		case writer.ReportFile:
			continue
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		payload, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}

		switch f.Name {
		case writer.NodesFile:
			sc.BvhNodeList, err = scene.DecodeNodes(payload)
			foundNodes = true
		case writer.TrianglesFile:
			sc.TriangleList, err = scene.DecodeTriangles(payload)
			foundTriangles = true
		case writer.StatsFile:
			err = gob.NewDecoder(bytes.NewReader(payload)).Decode(&sc.Stats)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "zipSceneReader: failed to load %s", f.Name)
		}
	}

	if !foundNodes || !foundTriangles {
		return nil, errors.Newf("zipSceneReader: %s is missing %s or %s", sceneRes.Path(), writer.NodesFile, writer.TrianglesFile)
	}

	p.logger.Noticef("loaded scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "zipSceneReader: could not open %s", f.Name)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

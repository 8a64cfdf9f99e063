package writer

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"time"

	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/log"
	"github.com/cockroachdb/errors"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return errors.Wrap(err, "zipSceneWriter")
	}

	err = writeArchive(zipFile, sc)
	if closeErr := zipFile.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, "zipSceneWriter")
	}
	if err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Serialize the scene buffers and metadata into a zip archive.
func writeArchive(out io.Writer, sc *scene.Scene) error {
	zw := zip.NewWriter(out)

	entries := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{NodesFile, func(w io.Writer) error { return scene.EncodeNodes(w, sc.BvhNodeList) }},
		{TrianglesFile, func(w io.Writer) error { return scene.EncodeTriangles(w, sc.TriangleList) }},
		{StatsFile, func(w io.Writer) error { return gob.NewEncoder(w).Encode(sc.Stats) }},
		{ReportFile, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewBufferString(sc.Report()))
			return err
		}},
	}

	for _, entry := range entries {
		cw, err := zw.Create(entry.name)
		if err != nil {
			return errors.Wrapf(err, "zipSceneWriter: could not create %s", entry.name)
		}
		if err = entry.encode(cw); err != nil {
			return errors.Wrapf(err, "zipSceneWriter: could not write %s", entry.name)
		}
	}

	return errors.Wrap(zw.Close(), "zipSceneWriter")
}

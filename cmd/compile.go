package cmd

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/achilleasa/rtbvh/asset/scene/reader"
	"github.com/achilleasa/rtbvh/asset/scene/writer"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli"
)

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("compile: no scene files specified")
	}

	opts, err := compilerOptions(ctx)
	if err != nil {
		logger.Error(err)
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if u, err := url.Parse(sceneFile); err == nil && u.Scheme != "" {
			err = errors.Newf("compile: remote scene %s is not supported; download it first", sceneFile)
			logger.Error(err)
			return err
		}

		ext := filepath.Ext(sceneFile)
		if ext != ".obj" && ext != ".lua" {
			err = errors.Newf("compile: unsupported file %s", sceneFile)
			logger.Error(err)
			return err
		}

		sc, err := reader.ReadScene(sceneFile, opts)
		if err != nil {
			logger.Error(err)
			return err
		}

		zipFile := strings.TrimSuffix(sceneFile, ext) + ".zip"
		if err = writer.WriteScene(sc, zipFile); err != nil {
			logger.Error(err)
			return err
		}

		logger.Infof("scene statistics for %s:\n%s", sceneFile, sc.Report())
	}

	return nil
}

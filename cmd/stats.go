package cmd

import (
	"fmt"

	"github.com/achilleasa/rtbvh/asset/compiler/bvh"
	"github.com/achilleasa/rtbvh/asset/scene/reader"
	"github.com/urfave/cli"
)

// Load a source or compiled scene, validate its BVH and print statistics.
func SceneStats(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := compilerOptions(ctx)
	if err != nil {
		logger.Error(err)
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		sc, err := reader.ReadScene(sceneFile, opts)
		if err != nil {
			logger.Error(err)
			return err
		}

		if err = bvh.Validate(sc, nil); err != nil {
			logger.Errorf("%s: %v", sceneFile, err)
			return err
		}

		fmt.Fprintf(ctx.App.Writer, "%s\n%s", sceneFile, sc.Report())
	}

	return nil
}

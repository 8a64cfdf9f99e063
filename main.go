package main

import (
	"os"

	"github.com/achilleasa/rtbvh/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rtbvh"
	app.Usage = "build GPU-ready bounding volume hierarchies for ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile a scene into a GPU-friendly BVH archive",
			Description: `
Read triangles from a wavefront obj file or a lua scene script, build a BVH
tree over them and flatten it into a node array and a triangle array that
can be uploaded verbatim to device memory.

The flattened scene is written to a zip archive next to each input file.`,
			ArgsUsage: "scene_file1.obj scene_file2.lua ...",
			Flags:     cmd.CompilerFlags,
			Action:    cmd.CompileScene,
		},
		{
			Name:        "stats",
			Usage:       "validate a scene BVH and print statistics",
			Description: `Load a source scene (compiling it first) or a compiled zip archive, validate its BVH and print a summary table.`,
			ArgsUsage:   "scene_file1.zip scene_file2.obj ...",
			Flags:       cmd.CompilerFlags,
			Action:      cmd.SceneStats,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

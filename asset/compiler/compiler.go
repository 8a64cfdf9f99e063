package compiler

import (
	"github.com/achilleasa/rtbvh/asset/compiler/bvh"
	"github.com/achilleasa/rtbvh/asset/compiler/input"
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/log"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
)

// Options for compiling a scene.
type Options struct {
	// The BVH depth budget.
	MaxDepth int

	// The strategy for assigning triangles to BVH leafs.
	Assignment bvh.LeafAssignment

	// A world transformation applied to all triangles before partitioning.
	Transform mgl32.Mat4
}

// Get the default compiler options.
func DefaultOptions() Options {
	return Options{
		MaxDepth:   bvh.DefaultMaxDepth,
		Assignment: bvh.ContainmentAssignment,
		Transform:  mgl32.Ident4(),
	}
}

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	opts           Options
	logger         log.Logger
}

// Compile a scene representation parsed by a scene reader into a GPU-friendly
// optimized scene format.
func Compile(parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	if opts.MaxDepth < 0 {
		return nil, errors.Newf("compiler: invalid max depth %d", opts.MaxDepth)
	}

	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		opts:        opts,
		logger:      log.New("scene compiler"),
	}

	start := hrtime.Now()
	compiler.logger.Noticef("compiling scene")

	err := compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %s", hrtime.Since(start))
	return compiler.optimizedScene, nil
}

// Collect scene triangles in world space, partition them into a BVH tree and
// flatten the tree into the optimized scene.
func (sc *sceneCompiler) partitionGeometry() error {
	triangles := sc.parsedScene.Triangles()
	if len(triangles) < 2 {
		return errors.Newf("compiler: scene must contain at least 2 triangles; got %d", len(triangles))
	}

	if sc.opts.Transform != mgl32.Ident4() && sc.opts.Transform != (mgl32.Mat4{}) {
		sc.logger.Info("applying world transformation")
		for i, tri := range triangles {
			triangles[i] = scene.NewTriangle(
				tri.A.Transform(sc.opts.Transform),
				tri.B.Transform(sc.opts.Transform),
				tri.C.Transform(sc.opts.Transform),
			)
		}
	}

	for i, tri := range triangles {
		if !tri.A.IsFinite() || !tri.B.IsFinite() || !tri.C.IsFinite() {
			return errors.Newf("compiler: triangle %d has a non-finite vertex", i)
		}
	}

	sc.logger.Infof("building BVH tree (%d meshes, %d triangles, max depth %d)", len(sc.parsedScene.Meshes), len(triangles), sc.opts.MaxDepth)
	start := hrtime.Now()
	root := bvh.Build(triangles, sc.opts.MaxDepth)
	buildTime := hrtime.Since(start)

	sc.logger.Infof("flattening BVH tree using %s leaf assignment", sc.opts.Assignment)
	start = hrtime.Now()
	sc.optimizedScene = bvh.Flatten(root, sc.opts.Assignment)
	flattenTime := hrtime.Since(start)

	if err := bvh.Validate(sc.optimizedScene, triangles); err != nil {
		return errors.Wrap(err, "compiler: generated an invalid BVH")
	}

	treeStats := root.Stats()
	sc.optimizedScene.Stats = scene.BuildStats{
		InputTriangles:     len(triangles),
		Nodes:              treeStats.Nodes,
		Leafs:              treeStats.Leafs,
		Height:             treeStats.Height,
		MaxLeafSize:        treeStats.MaxLeafSize,
		DuplicateTriangles: len(sc.optimizedScene.TriangleList) - len(triangles),
		BuildTime:          buildTime,
		FlattenTime:        flattenTime,
	}

	if dups := sc.optimizedScene.Stats.DuplicateTriangles; dups > 0 {
		sc.logger.Warningf("%d triangles were emitted by more than one leaf", dups)
	}
	sc.logger.Noticef(
		"partitioned geometry: %d nodes, %d leafs, height %d (build %s, flatten %s)",
		treeStats.Nodes, treeStats.Leafs, treeStats.Height, buildTime, flattenTime,
	)
	return nil
}

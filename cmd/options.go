package cmd

import (
	"strconv"
	"strings"

	"github.com/achilleasa/rtbvh/asset/compiler"
	"github.com/achilleasa/rtbvh/asset/compiler/bvh"
	"github.com/achilleasa/rtbvh/types"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"
)

// Flags shared by all commands that compile scenes.
var CompilerFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "max-depth",
		Value: bvh.DefaultMaxDepth,
		Usage: "BVH depth budget",
	},
	cli.StringFlag{
		Name:  "assignment",
		Value: bvh.ContainmentAssignment.String(),
		Usage: "leaf triangle assignment (containment, partition)",
	},
	cli.Float64Flag{
		Name:  "scale",
		Value: 1.0,
		Usage: "uniform scale applied to the scene geometry",
	},
	cli.StringFlag{
		Name:  "translate",
		Value: "0,0,0",
		Usage: "translation applied to the scene geometry after scaling",
	},
}

// Map command flags to compiler options.
func compilerOptions(ctx *cli.Context) (compiler.Options, error) {
	opts := compiler.DefaultOptions()
	opts.MaxDepth = ctx.Int("max-depth")

	var err error
	if opts.Assignment, err = parseAssignment(ctx.String("assignment")); err != nil {
		return opts, err
	}

	offset, err := parseVec3(ctx.String("translate"))
	if err != nil {
		return opts, err
	}
	scale := float32(ctx.Float64("scale"))
	if scale <= 0 {
		return opts, errors.Newf("invalid scale %v; scale must be positive", scale)
	}
	opts.Transform = mgl32.Translate3D(offset[0], offset[1], offset[2]).Mul4(mgl32.Scale3D(scale, scale, scale))

	return opts, nil
}

func parseAssignment(value string) (bvh.LeafAssignment, error) {
	for _, a := range []bvh.LeafAssignment{bvh.ContainmentAssignment, bvh.PartitionAssignment} {
		if strings.EqualFold(value, a.String()) {
			return a, nil
		}
	}
	return bvh.ContainmentAssignment, errors.Newf("unsupported leaf assignment %q", value)
}

// Parse a comma-separated vector.
func parseVec3(value string) (types.Vec3, error) {
	tokens := strings.Split(value, ",")
	if len(tokens) != 3 {
		return types.Vec3{}, errors.Newf("unsupported syntax for vector %q; expected 3 comma-separated values", value)
	}

	var out types.Vec3
	for i, token := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(token), 32)
		if err != nil {
			return types.Vec3{}, errors.Wrapf(err, "invalid component %d for vector %q", i, value)
		}
		out[i] = float32(v)
	}
	return out, nil
}

package bvh

import (
	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/cockroachdb/errors"
)

// Check the structural invariants of a flattened scene and return an error
// describing the first violation.
//
// If input is not nil, Validate also checks that every input triangle is
// contained in the bbox of at least one leaf.
func Validate(sc *scene.Scene, input []scene.Triangle) error {
	nodeCount := scene.NodeIndex(len(sc.BvhNodeList))
	triCount := uint64(len(sc.TriangleList))

	var leafs []scene.BBox
	for index := range sc.BvhNodeList {
		node := &sc.BvhNodeList[index]
		self := scene.NodeIndex(index)

		if node.IsLeaf() {
			first, count := node.GetTriangles()
			if uint64(first)+uint64(count) > triCount {
				return errors.Newf("validate: leaf %d triangle range [%d, %d) exceeds triangle list length %d", index, first, uint64(first)+uint64(count), triCount)
			}

			leafBBox := node.BBox()
			for i := first; i < first+count; i++ {
				if !leafBBox.Contains(sc.TriangleList[i].BBox()) {
					return errors.Newf("validate: triangle %d is not contained in the bbox of leaf %d", i, index)
				}
			}
			leafs = append(leafs, leafBBox)
			continue
		}

		if !node.Left.Valid() || !node.Right.Valid() {
			return errors.Newf("validate: node %d has a single child", index)
		}
		for _, child := range []scene.NodeIndex{node.Left, node.Right} {
			if child <= self || child >= nodeCount {
				return errors.Newf("validate: node %d has out of order child index %d", index, child)
			}
		}
		if node.Start != 0 || node.Count != 0 {
			return errors.Newf("validate: interior node %d has a non-empty triangle range", index)
		}
	}

	for i, tri := range input {
		triBBox := tri.BBox()
		covered := false
		for _, leafBBox := range leafs {
			if leafBBox.Contains(triBBox) {
				covered = true
				break
			}
		}
		if !covered {
			return errors.Newf("validate: input triangle %d is not covered by any leaf", i)
		}
	}

	return nil
}

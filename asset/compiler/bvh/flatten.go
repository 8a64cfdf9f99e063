package bvh

import (
	"github.com/achilleasa/rtbvh/asset/scene"
)

// LeafAssignment selects how Flatten populates the triangle slice of each
// leaf.
type LeafAssignment uint8

const (
	// Scan the root triangle set and assign every triangle whose bbox
	// lies within the leaf bbox. A triangle may be emitted by more than
	// one leaf.
	ContainmentAssignment LeafAssignment = iota

	// Emit the exact triangle subset that the builder assigned to each
	// leaf. Every triangle is emitted exactly once.
	PartitionAssignment
)

// Return a printable name for the assignment mode.
func (a LeafAssignment) String() string {
	switch a {
	case ContainmentAssignment:
		return "containment"
	case PartitionAssignment:
		return "partition"
	}
	return "unknown"
}

type flattener struct {
	nodes []scene.BvhNode

	// The tree node for each entry in nodes.
	treeNodes []*Node
}

// Flatten a BVH tree into a contiguous node list and a triangle list.
//
// Nodes are emitted in depth-first pre-order so a node index is always
// smaller than the indices of its children. Triangles are grouped by leaf in
// leaf visitation order. A nil root yields an empty scene.
func Flatten(root *Node, assignment LeafAssignment) *scene.Scene {
	sc := &scene.Scene{
		BvhNodeList:  make([]scene.BvhNode, 0),
		TriangleList: make([]scene.Triangle, 0),
	}
	if root == nil {
		return sc
	}

	f := &flattener{}
	f.flatten(root)

	for index := range f.nodes {
		node := &f.nodes[index]
		if !node.IsLeaf() {
			continue
		}

		first := uint32(len(sc.TriangleList))
		switch assignment {
		case PartitionAssignment:
			sc.TriangleList = append(sc.TriangleList, f.treeNodes[index].Triangles...)
		default:
			leafBBox := node.BBox()
			for _, tri := range root.Triangles {
				if leafBBox.Contains(tri.BBox()) {
					sc.TriangleList = append(sc.TriangleList, tri)
				}
			}
		}
		node.SetTriangles(first, uint32(len(sc.TriangleList))-first)
	}

	sc.BvhNodeList = f.nodes
	return sc
}

// Append the subtree rooted at n and return the index of n.
func (f *flattener) flatten(n *Node) scene.NodeIndex {
	nodeIndex := scene.NodeIndex(len(f.nodes))
	f.nodes = append(f.nodes, scene.NewBvhNode(n.BBox))
	f.treeNodes = append(f.treeNodes, n)

	left, right := scene.NoNode, scene.NoNode
	if n.Left != nil {
		left = f.flatten(n.Left)
	}
	if n.Right != nil {
		right = f.flatten(n.Right)
	}
	f.nodes[nodeIndex].SetChildNodes(left, right)

	return nodeIndex
}

package bvh

import (
	"fmt"
	"sort"
	"time"

	"github.com/achilleasa/rtbvh/asset/scene"
	"github.com/achilleasa/rtbvh/log"
)

const (
	// Nodes with fewer triangles than this threshold are never split.
	MinLeafTriangles = 8

	// The default depth budget for Build. The root counts as depth 1 so
	// trees built with this budget have a height of at most 9.
	DefaultMaxDepth = 10
)

// A node of the BVH tree. A node owns the triangles of its subtree and
// either two children or none.
type Node struct {
	// The triangles assigned to this subtree.
	Triangles []scene.Triangle

	// The tight bounding box of Triangles.
	BBox scene.BBox

	Left  *Node
	Right *Node
}

// Returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Calculate the height of the subtree rooted at this node. Leafs have a
// height of 0.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}

	switch {
	case n.Left != nil && n.Right != nil:
		return 1 + max(n.Left.Depth(), n.Right.Depth())
	case n.Left != nil:
		return 1 + n.Left.Depth()
	case n.Right != nil:
		return 1 + n.Right.Depth()
	}
	return 0
}

// Visit the subtree rooted at this node in pre-order. The depth argument
// passed to fn is 0 for n itself.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int), depth int) {
	if n == nil {
		return
	}
	fn(n, depth)
	n.Left.walk(fn, depth+1)
	n.Right.walk(fn, depth+1)
}

// Tree shape statistics.
type TreeStats struct {
	Nodes       int
	Leafs       int
	Height      int
	MaxLeafSize int
}

// Collect statistics for the subtree rooted at this node.
func (n *Node) Stats() TreeStats {
	var stats TreeStats
	n.Walk(func(node *Node, depth int) {
		stats.Nodes++
		if depth > stats.Height {
			stats.Height = depth
		}
		if node.IsLeaf() {
			stats.Leafs++
			if len(node.Triangles) > stats.MaxLeafSize {
				stats.MaxLeafSize = len(node.Triangles)
			}
		}
	})
	return stats
}

type builder struct {
	logger log.Logger

	// The depth at which nodes are forced to become leafs.
	maxDepth int
}

// Construct a BVH tree from a triangle list.
//
// Each node is split at the median triangle along the longest axis of its
// bounding box. Splitting stops when a node holds fewer than
// MinLeafTriangles triangles or when the node depth reaches maxDepth. The
// root node is at depth 1, so the returned tree has a height of at most
// maxDepth-1 and a maxDepth of 0 or 1 yields a single leaf.
//
// Build panics if fewer than two triangles are supplied or if maxDepth is
// negative.
func Build(triangles []scene.Triangle, maxDepth int) *Node {
	if len(triangles) < 2 {
		panic(fmt.Sprintf("bvh: Build requires at least 2 triangles; got %d", len(triangles)))
	}
	if maxDepth < 0 {
		panic(fmt.Sprintf("bvh: invalid max depth %d", maxDepth))
	}

	b := &builder{
		logger:   log.New("bvh builder"),
		maxDepth: maxDepth,
	}

	start := time.Now()
	workList := make([]scene.Triangle, len(triangles))
	copy(workList, triangles)
	root := b.partition(workList, 1)
	stats := root.Stats()
	b.logger.Debugf(
		"BVH tree build time: %d ms, height: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		stats.Height, stats.Nodes, stats.Leafs,
	)
	return root
}

// Partition worklist and return the subtree root. The node takes ownership
// of workList.
func (b *builder) partition(workList []scene.Triangle, depth int) *Node {
	node := &Node{
		Triangles: workList,
		BBox:      scene.BBoxOf(workList),
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) < MinLeafTriangles || depth >= b.maxDepth {
		return node
	}

	// Sort a copy of the work list by triangle centroid along the cut axis
	axis := node.BBox.LongestAxis()
	sorted := make([]scene.Triangle, len(workList))
	copy(sorted, workList)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Center()[axis] < sorted[j].Center()[axis]
	})

	// Split at the median; for odd counts the left half gets the smaller share
	mid := len(sorted) / 2
	leftWorkList := make([]scene.Triangle, mid)
	rightWorkList := make([]scene.Triangle, len(sorted)-mid)
	copy(leftWorkList, sorted[:mid])
	copy(rightWorkList, sorted[mid:])

	node.Left = b.partition(leftWorkList, depth+1)
	node.Right = b.partition(rightWorkList, depth+1)
	return node
}

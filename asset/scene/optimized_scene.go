package scene

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/rtbvh/types"
	"github.com/olekukonko/tablewriter"
)

// An optional index into the BVH node list. Child links use NoNode instead
// of 0 so that the root node index is never ambiguous.
type NodeIndex int32

// The sentinel value for a missing child node.
const NoNode NodeIndex = -1

// Returns true if the index points to a node.
func (i NodeIndex) Valid() bool {
	return i >= 0
}

// Bvh nodes are comprised of a bounding box, two child node indices and
// a triangle range:
//
// - For non-leaf nodes Left and Right point to the child nodes and
// Start/Count are zero.
// - For leafs Left and Right are both NoNode and Start/Count select the
// leaf triangles from the scene triangle list.
type BvhNode struct {
	Min types.Vec3
	Max types.Vec3

	Left  NodeIndex
	Right NodeIndex

	Start uint32
	Count uint32
}

// Create a node with the given bbox and no children.
func NewBvhNode(bbox BBox) BvhNode {
	return BvhNode{
		Min:   bbox.Min,
		Max:   bbox.Max,
		Left:  NoNode,
		Right: NoNode,
	}
}

// Get node bounding box.
func (n *BvhNode) BBox() BBox {
	return BBox{Min: n.Min, Max: n.Max}
}

// Set left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right NodeIndex) {
	n.Left = left
	n.Right = right
}

// Returns true if the node has no children.
func (n *BvhNode) IsLeaf() bool {
	return !n.Left.Valid() && !n.Right.Valid()
}

// Set triangle index and count.
func (n *BvhNode) SetTriangles(first, count uint32) {
	n.Start = first
	n.Count = count
}

// Get triangle index and count.
func (n *BvhNode) GetTriangles() (first, count uint32) {
	return n.Start, n.Count
}

// Statistics collected while compiling a scene. They are informational only
// and are not part of the GPU payload.
type BuildStats struct {
	InputTriangles int
	Nodes          int
	Leafs          int
	Height         int
	MaxLeafSize    int

	// Number of extra triangle copies emitted because a triangle fits in
	// more than one leaf.
	DuplicateTriangles int

	BuildTime   time.Duration
	FlattenTime time.Duration
}

// A serialized scene. BvhNodeList and TriangleList are uploaded verbatim to
// device memory.
type Scene struct {
	BvhNodeList  []BvhNode
	TriangleList []Triangle

	Stats BuildStats
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Report() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Size"})
	table.Append([]string{"BVH", "---", fmtSize(NodeStride, len(sc.BvhNodeList))})
	table.Append([]string{"", "Nodes", fmt.Sprintf("%d", len(sc.BvhNodeList))})
	table.Append([]string{"", "Leafs", fmt.Sprintf("%d", sc.Stats.Leafs)})
	table.Append([]string{"", "Height", fmt.Sprintf("%d", sc.Stats.Height)})
	table.Append([]string{"", "Max leaf size", fmt.Sprintf("%d", sc.Stats.MaxLeafSize)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Geometry", "---", fmtSize(TriangleStride, len(sc.TriangleList))})
	table.Append([]string{"", "Input triangles", fmt.Sprintf("%d", sc.Stats.InputTriangles)})
	table.Append([]string{"", "Triangles", fmt.Sprintf("%d", len(sc.TriangleList))})
	table.Append([]string{"", "Duplicates", fmt.Sprintf("%d", sc.Stats.DuplicateTriangles)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Timing", "---", ""})
	table.Append([]string{"", "Build", sc.Stats.BuildTime.String()})
	table.Append([]string{"", "Flatten", sc.Stats.FlattenTime.String()})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(1, NodeStride*len(sc.BvhNodeList)+TriangleStride*len(sc.TriangleList)), " ")})

	table.Render()
	return buf.String()
}

// Format the size of count records of the given stride using the
// appropriate byte/kb/mb unit.
func fmtSize(stride, count int) string {
	totalBytes := float32(stride * count)
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}

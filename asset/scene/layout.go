package scene

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/achilleasa/rtbvh/types"
	"github.com/cockroachdb/errors"
)

// Byte order used by the GPU upload buffers.
var ByteOrder = binary.LittleEndian

// Device-side record layouts. Every vec3 is padded to a vec4 with w = 0 to
// satisfy std430 alignment rules.
type gpuNode struct {
	Min types.Vec4
	Max types.Vec4

	Left  int32
	Right int32
	Start uint32
	Count uint32
}

type gpuTriangle struct {
	A types.Vec4
	B types.Vec4
	C types.Vec4
}

// Size in bytes of a single encoded BvhNode / Triangle.
var (
	NodeStride     = binary.Size(gpuNode{})
	TriangleStride = binary.Size(gpuTriangle{})
)

// Write the node list to w using the device layout.
func EncodeNodes(w io.Writer, nodes []BvhNode) error {
	out := make([]gpuNode, len(nodes))
	for i, n := range nodes {
		out[i] = gpuNode{
			Min:   n.Min.Vec4(0),
			Max:   n.Max.Vec4(0),
			Left:  int32(n.Left),
			Right: int32(n.Right),
			Start: n.Start,
			Count: n.Count,
		}
	}
	if err := binary.Write(w, ByteOrder, out); err != nil {
		return errors.Wrap(err, "encodeNodes")
	}
	return nil
}

// Write the triangle list to w using the device layout.
func EncodeTriangles(w io.Writer, triangles []Triangle) error {
	out := make([]gpuTriangle, len(triangles))
	for i, t := range triangles {
		out[i] = gpuTriangle{A: t.A.Vec4(0), B: t.B.Vec4(0), C: t.C.Vec4(0)}
	}
	if err := binary.Write(w, ByteOrder, out); err != nil {
		return errors.Wrap(err, "encodeTriangles")
	}
	return nil
}

// Decode a node list previously written by EncodeNodes.
func DecodeNodes(data []byte) ([]BvhNode, error) {
	if len(data)%NodeStride != 0 {
		return nil, errors.Newf("decodeNodes: payload length %d is not a multiple of the node stride (%d)", len(data), NodeStride)
	}

	in := make([]gpuNode, len(data)/NodeStride)
	if err := binary.Read(bytes.NewReader(data), ByteOrder, in); err != nil {
		return nil, errors.Wrap(err, "decodeNodes")
	}

	nodes := make([]BvhNode, len(in))
	for i, n := range in {
		nodes[i] = BvhNode{
			Min:   n.Min.Vec3(),
			Max:   n.Max.Vec3(),
			Left:  NodeIndex(n.Left),
			Right: NodeIndex(n.Right),
			Start: n.Start,
			Count: n.Count,
		}
	}
	return nodes, nil
}

// Decode a triangle list previously written by EncodeTriangles.
func DecodeTriangles(data []byte) ([]Triangle, error) {
	if len(data)%TriangleStride != 0 {
		return nil, errors.Newf("decodeTriangles: payload length %d is not a multiple of the triangle stride (%d)", len(data), TriangleStride)
	}

	in := make([]gpuTriangle, len(data)/TriangleStride)
	if err := binary.Read(bytes.NewReader(data), ByteOrder, in); err != nil {
		return nil, errors.Wrap(err, "decodeTriangles")
	}

	triangles := make([]Triangle, len(in))
	for i, t := range in {
		triangles[i] = Triangle{A: t.A.Vec3(), B: t.B.Vec3(), C: t.C.Vec3()}
	}
	return triangles, nil
}

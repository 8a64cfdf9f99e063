package writer

import "github.com/achilleasa/rtbvh/asset/scene"

// Entries of a compiled scene archive.
const (
	NodesFile     = "nodes.bin"
	TrianglesFile = "triangles.bin"
	StatsFile     = "stats.gob"
	ReportFile    = "stats.txt"
)

// Write scene to binary format.
func WriteScene(sc *scene.Scene, filename string) error {
	writer := newZipSceneWriter(filename)
	return writer.Write(sc)
}

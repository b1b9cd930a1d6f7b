package figure3d

import (
	"fmt"
	"io"
	"math"

	mst "github.com/flywave/go-mst"
	"github.com/flywave/go3d/vec3"
)

// MstExporter 导出为 MST 网格，顶点烘焙到世界坐标
type MstExporter struct {
	// ZUp 保持宿主的 Z 轴向上，默认转换为 Y 轴向上
	ZUp bool
}

func (cv *MstExporter) Export(s *Scene, w io.Writer) error {
	mh, _ := cv.Convert(s)
	ew := &errWriter{w: w}
	mst.MeshMarshal(ew, mh)
	if ew.err != nil {
		return fmt.Errorf("write mst: %w", ew.err)
	}
	return nil
}

// errWriter 记录第一次写入错误，之后的写入直接丢弃
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// Convert 将场景转换为 MST 网格并返回世界包围盒
func (cv *MstExporter) Convert(s *Scene) (*mst.Mesh, *[6]float64) {
	mesh := mst.NewMesh()
	mtlIndex := make(map[*Material]int32)
	var fallback int32 = -1

	material := func(m *Material) int32 {
		if m == nil {
			if fallback < 0 {
				// 默认灰色
				mesh.Materials = append(mesh.Materials, &mst.BaseMaterial{Color: [3]byte{204, 204, 204}})
				fallback = int32(len(mesh.Materials) - 1)
			}
			return fallback
		}
		if id, ok := mtlIndex[m]; ok {
			return id
		}
		mtl := &mst.PbrMaterial{}
		mtl.Color = m.RGB8()
		mtl.Transparency = 1 - float32(m.Color[3])
		mtl.Metallic = float32(m.Metallic)
		mtl.Roughness = float32(m.Roughness)
		mesh.Materials = append(mesh.Materials, mtl)
		id := int32(len(mesh.Materials) - 1)
		mtlIndex[m] = id
		return id
	}

	for _, o := range s.Objects {
		if o.Mesh == nil || o.Mesh.TriangleCount() == 0 {
			continue
		}
		m := o.Matrix()
		nm := normalTRS(o.quat(), o.Scale)
		node := &mst.MeshNode{}
		for i, p := range o.Mesh.Positions {
			wp := transformPoint(m, p)
			wn := transformNormal(nm, o.Mesh.Normals[i])
			if !cv.ZUp {
				wp = vec3.T(zUpToYUp([3]float32(wp)))
				wn = vec3.T(zUpToYUp([3]float32(wn)))
			}
			node.Vertices = append(node.Vertices, wp)
			node.Normals = append(node.Normals, wn)
		}
		for _, fg := range o.Mesh.Groups {
			if len(fg.Indices) == 0 {
				continue
			}
			tg := &mst.MeshTriangle{Batchid: material(o.Mesh.SlotMaterial(fg.Slot))}
			for i := 0; i+2 < len(fg.Indices); i += 3 {
				tg.Faces = append(tg.Faces, &mst.Face{
					Vertex: [3]uint32{fg.Indices[i], fg.Indices[i+1], fg.Indices[i+2]},
				})
			}
			node.FaceGroup = append(node.FaceGroup, tg)
		}
		mesh.Nodes = append(mesh.Nodes, node)
	}

	bbx := &[6]float64{}
	first := true
	for _, nd := range mesh.Nodes {
		for _, v := range nd.Vertices {
			p := &[3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
			if first {
				*bbx = [6]float64{p[0], p[1], p[2], p[0], p[1], p[2]}
				first = false
				continue
			}
			addPoint(bbx, p)
		}
	}
	return mesh, bbx
}

func addPoint(bx *[6]float64, p *[3]float64) {
	bx[0] = math.Min(bx[0], p[0])
	bx[1] = math.Min(bx[1], p[1])
	bx[2] = math.Min(bx[2], p[2])

	bx[3] = math.Max(bx[3], p[0])
	bx[4] = math.Max(bx[4], p[1])
	bx[5] = math.Max(bx[5], p[2])
}

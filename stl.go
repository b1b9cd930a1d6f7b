package figure3d

import (
	"io"
	"math"

	"github.com/hschendel/stl"
)

// StlExporter 导出二进制 STL，顶点烘焙到世界坐标，保持 Z 轴向上
type StlExporter struct{}

func (cv *StlExporter) Export(s *Scene, w io.Writer) error {
	return cv.Convert(s).WriteAll(w)
}

// Convert 将场景中全部三角形转换为 STL 实体，法线按面计算
func (cv *StlExporter) Convert(s *Scene) *stl.Solid {
	solid := &stl.Solid{Name: "figure3d"}
	for _, o := range s.Objects {
		if o.Mesh == nil {
			continue
		}
		m := o.Matrix()
		world := make([]stl.Vec3, len(o.Mesh.Positions))
		for i, p := range o.Mesh.Positions {
			world[i] = stl.Vec3(transformPoint(m, p))
		}
		for _, fg := range o.Mesh.Groups {
			for i := 0; i+2 < len(fg.Indices); i += 3 {
				t := stl.Triangle{
					Vertices: [3]stl.Vec3{
						world[fg.Indices[i]], world[fg.Indices[i+1]], world[fg.Indices[i+2]],
					},
				}
				t.Normal = faceNormal(t.Vertices)
				solid.Triangles = append(solid.Triangles, t)
			}
		}
	}
	return solid
}

func faceNormal(v [3]stl.Vec3) stl.Vec3 {
	var a, b [3]float64
	for i := 0; i < 3; i++ {
		a[i] = float64(v[1][i] - v[0][i])
		b[i] = float64(v[2][i] - v[0][i])
	}
	n := [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	l := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
	if l == 0 {
		return stl.Vec3{}
	}
	l = 1 / math.Sqrt(l)
	return stl.Vec3{float32(n[0] * l), float32(n[1] * l), float32(n[2] * l)}
}

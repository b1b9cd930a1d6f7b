package figure3d

import (
	"fmt"
	"math"

	"github.com/flywave/go3d/vec3"
)

// 宿主程序中基本体的默认参数
const (
	DefaultSphereSegments   = 32
	DefaultSphereRings      = 16
	DefaultCylinderVertices = 32
	DefaultCubeSize         = 2.0
)

// FaceGroup 一组使用同一材质槽的三角形
type FaceGroup struct {
	Slot    int
	Indices []uint32
}

// Mesh 网格数据，顶点位于对象局部坐标系
type Mesh struct {
	Positions []vec3.T
	Normals   []vec3.T
	Groups    []*FaceGroup
	Materials []*Material
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

func (m *Mesh) TriangleCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Indices) / 3
	}
	return n
}

func (m *Mesh) addVertex(p, n vec3.T) uint32 {
	m.Positions = append(m.Positions, p)
	m.Normals = append(m.Normals, n)
	return uint32(len(m.Positions) - 1)
}

func (m *Mesh) group(slot int) *FaceGroup {
	for _, g := range m.Groups {
		if g.Slot == slot {
			return g
		}
	}
	g := &FaceGroup{Slot: slot}
	m.Groups = append(m.Groups, g)
	return g
}

func (g *FaceGroup) addTriangle(a, b, c uint32) {
	g.Indices = append(g.Indices, a, b, c)
}

// UVSphere 生成以原点为中心、两极位于 ±Z 的经纬球
func UVSphere(radius float64, segments, rings int) (*Mesh, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: sphere radius %v", ErrInvalidPrimitive, radius)
	}
	if segments < 3 || rings < 3 {
		return nil, fmt.Errorf("%w: sphere segments %d rings %d", ErrInvalidPrimitive, segments, rings)
	}
	mh := &Mesh{}
	fg := mh.group(0)

	top := mh.addVertex(vec3.T{0, 0, float32(radius)}, vec3.T{0, 0, 1})
	ringStart := make([]uint32, 0, rings-1)
	for i := 1; i < rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		z, rr := math.Cos(phi), math.Sin(phi)
		ringStart = append(ringStart, uint32(len(mh.Positions)))
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			n := vec3.T{float32(rr * math.Cos(theta)), float32(rr * math.Sin(theta)), float32(z)}
			p := vec3.T{n[0] * float32(radius), n[1] * float32(radius), n[2] * float32(radius)}
			mh.addVertex(p, n)
		}
	}
	bottom := mh.addVertex(vec3.T{0, 0, float32(-radius)}, vec3.T{0, 0, -1})

	seg := uint32(segments)
	first := ringStart[0]
	for j := uint32(0); j < seg; j++ {
		fg.addTriangle(top, first+j, first+(j+1)%seg)
	}
	for r := 0; r+1 < len(ringStart); r++ {
		a, b := ringStart[r], ringStart[r+1]
		for j := uint32(0); j < seg; j++ {
			k := (j + 1) % seg
			fg.addTriangle(a+j, b+j, b+k)
			fg.addTriangle(a+j, b+k, a+k)
		}
	}
	last := ringStart[len(ringStart)-1]
	for j := uint32(0); j < seg; j++ {
		fg.addTriangle(last+j, bottom, last+(j+1)%seg)
	}
	return mh, nil
}

// Cylinder 生成沿 Z 轴、中心在原点的圆柱，两端为扇形三角化的多边形盖
func Cylinder(radius, depth float64, vertices int) (*Mesh, error) {
	if radius <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: cylinder radius %v depth %v", ErrInvalidPrimitive, radius, depth)
	}
	if vertices < 3 {
		return nil, fmt.Errorf("%w: cylinder vertices %d", ErrInvalidPrimitive, vertices)
	}
	mh := &Mesh{}
	fg := mh.group(0)
	h := float32(depth / 2)
	r := float32(radius)
	n := uint32(vertices)

	ring := func(j uint32) (float32, float32) {
		theta := 2 * math.Pi * float64(j) / float64(vertices)
		return float32(math.Cos(theta)), float32(math.Sin(theta))
	}

	// 侧面
	sideTop := uint32(len(mh.Positions))
	for j := uint32(0); j < n; j++ {
		c, s := ring(j)
		mh.addVertex(vec3.T{c * r, s * r, h}, vec3.T{c, s, 0})
	}
	sideBottom := uint32(len(mh.Positions))
	for j := uint32(0); j < n; j++ {
		c, s := ring(j)
		mh.addVertex(vec3.T{c * r, s * r, -h}, vec3.T{c, s, 0})
	}
	for j := uint32(0); j < n; j++ {
		k := (j + 1) % n
		fg.addTriangle(sideTop+j, sideBottom+j, sideBottom+k)
		fg.addTriangle(sideTop+j, sideBottom+k, sideTop+k)
	}

	// 顶盖与底盖
	capTop := uint32(len(mh.Positions))
	for j := uint32(0); j < n; j++ {
		c, s := ring(j)
		mh.addVertex(vec3.T{c * r, s * r, h}, vec3.T{0, 0, 1})
	}
	capBottom := uint32(len(mh.Positions))
	for j := uint32(0); j < n; j++ {
		c, s := ring(j)
		mh.addVertex(vec3.T{c * r, s * r, -h}, vec3.T{0, 0, -1})
	}
	for j := uint32(1); j+1 < n; j++ {
		fg.addTriangle(capTop, capTop+j, capTop+j+1)
		fg.addTriangle(capBottom, capBottom+j+1, capBottom+j)
	}
	return mh, nil
}

var cubeFaces = [6]struct {
	normal, u, v vec3.T
}{
	{vec3.T{1, 0, 0}, vec3.T{0, 1, 0}, vec3.T{0, 0, 1}},
	{vec3.T{-1, 0, 0}, vec3.T{0, 0, 1}, vec3.T{0, 1, 0}},
	{vec3.T{0, 1, 0}, vec3.T{0, 0, 1}, vec3.T{1, 0, 0}},
	{vec3.T{0, -1, 0}, vec3.T{1, 0, 0}, vec3.T{0, 0, 1}},
	{vec3.T{0, 0, 1}, vec3.T{1, 0, 0}, vec3.T{0, 1, 0}},
	{vec3.T{0, 0, -1}, vec3.T{0, 1, 0}, vec3.T{1, 0, 0}},
}

// Cube 生成边长为 size 的轴对齐立方体，每个面独立顶点
func Cube(size float64) (*Mesh, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: cube size %v", ErrInvalidPrimitive, size)
	}
	mh := &Mesh{}
	fg := mh.group(0)
	h := float32(size / 2)
	for _, f := range cubeFaces {
		// u × v == normal，保证逆时针
		base := uint32(len(mh.Positions))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p vec3.T
			for i := 0; i < 3; i++ {
				p[i] = (f.normal[i] + c[0]*f.u[i] + c[1]*f.v[i]) * h
			}
			mh.addVertex(p, f.normal)
		}
		fg.addTriangle(base, base+1, base+2)
		fg.addTriangle(base, base+2, base+3)
	}
	return mh, nil
}

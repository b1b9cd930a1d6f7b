package figure3d

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	dmat "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/qmuntal/gltf"
)

// Summary 读取 GLB 后的统计信息
type Summary struct {
	Nodes      int
	NodeNames  []string
	Meshes     int
	Materials  int
	Primitives int
	Vertices   int
	Triangles  int
	// BaseColors 按材质顺序
	BaseColors [][4]float64
	// BBox 世界坐标包围盒 minx, miny, minz, maxx, maxy, maxz
	BBox [6]float64
}

func OpenGLB(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGLB(f)
}

func ReadGLB(r io.Reader) (*Summary, error) {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glb: %w", err)
	}
	rd := &glbReader{doc: doc, parentMap: make(map[uint32]uint32)}
	return rd.summarize()
}

type glbReader struct {
	doc       *gltf.Document
	parentMap map[uint32]uint32
}

func (g *glbReader) getParent(nds []uint32) {
	for _, n := range nds {
		nd := g.doc.Nodes[n]
		for _, cn := range nd.Children {
			g.parentMap[cn] = n
		}
		g.getParent(nd.Children)
	}
}

func (g *glbReader) summarize() (*Summary, error) {
	doc := g.doc
	sm := &Summary{
		Nodes:     len(doc.Nodes),
		Meshes:    len(doc.Meshes),
		Materials: len(doc.Materials),
	}
	for _, sc := range doc.Scenes {
		g.getParent(sc.Nodes)
	}
	for _, mt := range doc.Materials {
		c := [4]float64{1, 1, 1, 1}
		if mt.PBRMetallicRoughness != nil && mt.PBRMetallicRoughness.BaseColorFactor != nil {
			f := mt.PBRMetallicRoughness.BaseColorFactor
			c = [4]float64{float64(f[0]), float64(f[1]), float64(f[2]), float64(f[3])}
		}
		sm.BaseColors = append(sm.BaseColors, c)
	}

	bbx := dvec3.MinBox
	empty := true
	seen := make(map[uint32]bool)
	for i, nd := range doc.Nodes {
		sm.NodeNames = append(sm.NodeNames, nd.Name)
		if nd.Mesh == nil {
			continue
		}
		mat := g.toMat(uint32(i))
		mh := doc.Meshes[*nd.Mesh]
		for _, ps := range mh.Primitives {
			sm.Primitives++
			if ps.Indices != nil {
				sm.Triangles += int(doc.Accessors[*ps.Indices].Count) / 3
			}
			idx, ok := ps.Attributes["POSITION"]
			if !ok {
				continue
			}
			if !seen[idx] {
				sm.Vertices += int(doc.Accessors[idx].Count)
				seen[idx] = true
			}
			err := readDataByAccessor(doc, doc.Accessors[idx], func(res interface{}) {
				v, ok := res.(*[3]float32)
				if !ok {
					return
				}
				dv := dvec3.T{float64(v[0]), float64(v[1]), float64(v[2])}
				dv = mat.MulVec3(&dv)
				bbx.Extend(&dv)
				empty = false
			})
			if err != nil {
				return nil, err
			}
		}
	}
	if !empty {
		sm.BBox = *bbx.Array()
	}
	return sm, nil
}

func (g *glbReader) toMat(idx uint32) *dmat.T {
	mat := dmat.Ident
	if pid, ok := g.parentMap[idx]; ok {
		mat = *g.toMat(pid)
	}
	nd := g.doc.Nodes[idx]
	sc := dvec3.T{float64(nd.Scale[0]), float64(nd.Scale[1]), float64(nd.Scale[2])}
	tra := dvec3.T{float64(nd.Translation[0]), float64(nd.Translation[1]), float64(nd.Translation[2])}
	rot := quaternion.T{float64(nd.Rotation[0]), float64(nd.Rotation[1]), float64(nd.Rotation[2]), float64(nd.Rotation[3])}
	mt := dmat.Compose(&tra, &rot, &sc)
	out := dmat.Ident
	out.AssignMul(&mat, mt)
	return &out
}

func readDataByAccessor(doc *gltf.Document, acc *gltf.Accessor, procces func(interface{})) error {
	if acc.BufferView == nil {
		return errors.New("accessor has no buffer view")
	}
	bv := doc.BufferViews[*acc.BufferView]
	buffer := doc.Buffers[bv.Buffer]
	start := int(bv.ByteOffset + acc.ByteOffset)
	end := int(bv.ByteOffset + bv.ByteLength)
	if start > end || end > len(buffer.Data) {
		return fmt.Errorf("accessor out of buffer range [%d:%d] of %d", start, end, len(buffer.Data))
	}
	bf := bytes.NewBuffer(buffer.Data[start:end])

	var fcs interface{}
	switch acc.Type {
	case gltf.AccessorVec3:
		if acc.ComponentType != gltf.ComponentFloat {
			return errors.New("unsupported vec3 component type")
		}
		fcs = &[3]float32{}
	case gltf.AccessorScalar:
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			n := uint8(0)
			fcs = &n
		case gltf.ComponentUshort:
			n := uint16(0)
			fcs = &n
		case gltf.ComponentUint:
			n := uint32(0)
			fcs = &n
		default:
			return errors.New("unsupported scalar component type")
		}
	default:
		return errors.New("acc have no type")
	}

	for i := 0; i < int(acc.Count); i++ {
		if err := binary.Read(bf, binary.LittleEndian, fcs); err != nil {
			return err
		}
		procces(fcs)
	}
	return nil
}

// Near 判断两个包围盒在容差内相等
func Near(a, b [6]float64, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

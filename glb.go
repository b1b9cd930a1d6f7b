package figure3d

import (
	"io"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GlbExporter 场景到 glTF 二进制的导出器
type GlbExporter struct {
	// YUp 将宿主的 Z 轴向上转换为 glTF 的 Y 轴向上
	YUp bool

	matIndex map[*Material]uint32
}

func NewGlbExporter() *GlbExporter {
	return &GlbExporter{YUp: true}
}

func (g *GlbExporter) Export(s *Scene, w io.Writer) error {
	doc := g.Document(s)
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// Document builds the glTF document: one node and one mesh per object, one
// primitive per non-empty face group. Materials are emitted on first use.
func (g *GlbExporter) Document(s *Scene) *gltf.Document {
	g.matIndex = make(map[*Material]uint32)
	doc := gltf.NewDocument()
	doc.Asset.Generator = "go-figure3d"

	for _, o := range s.Objects {
		node := &gltf.Node{Name: o.Name}
		g.setTRS(node, o)

		if mesh := g.transMesh(doc, o); mesh != nil {
			doc.Meshes = append(doc.Meshes, mesh)
			node.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}
	return doc
}

func (g *GlbExporter) setTRS(node *gltf.Node, o *Object) {
	q := o.quat()
	t := [3]float32{float32(o.Location[0]), float32(o.Location[1]), float32(o.Location[2])}
	r := [4]float32{float32(q[0]), float32(q[1]), float32(q[2]), float32(q[3])}
	sc := [3]float32{float32(o.Scale[0]), float32(o.Scale[1]), float32(o.Scale[2])}
	if g.YUp {
		t = zUpToYUp(t)
		r = [4]float32{r[0], r[2], -r[1], r[3]}
		sc = [3]float32{sc[0], sc[2], sc[1]}
	}
	node.Translation = t
	node.Rotation = r
	node.Scale = sc
}

func (g *GlbExporter) transMesh(doc *gltf.Document, o *Object) *gltf.Mesh {
	mh := o.Mesh
	if mh == nil || mh.TriangleCount() == 0 {
		return nil
	}
	positions := make([][3]float32, len(mh.Positions))
	normals := make([][3]float32, len(mh.Normals))
	for i, p := range mh.Positions {
		positions[i] = [3]float32(p)
		normals[i] = [3]float32(mh.Normals[i])
		if g.YUp {
			positions[i] = zUpToYUp(positions[i])
			normals[i] = zUpToYUp(normals[i])
		}
	}
	posAcc := modeler.WritePosition(doc, positions)
	nrmAcc := modeler.WriteNormal(doc, normals)

	mesh := &gltf.Mesh{Name: o.Name}
	for _, fg := range mh.Groups {
		if len(fg.Indices) == 0 {
			continue
		}
		var idxAcc uint32
		if len(positions) <= math.MaxUint16 {
			idx := make([]uint16, len(fg.Indices))
			for i, v := range fg.Indices {
				idx[i] = uint16(v)
			}
			idxAcc = modeler.WriteIndices(doc, idx)
		} else {
			idxAcc = modeler.WriteIndices(doc, fg.Indices)
		}
		prim := &gltf.Primitive{
			Indices: gltf.Index(idxAcc),
			Attributes: map[string]uint32{
				"POSITION": posAcc,
				"NORMAL":   nrmAcc,
			},
		}
		if mat := mh.SlotMaterial(fg.Slot); mat != nil {
			prim.Material = gltf.Index(g.transMaterial(doc, mat))
		}
		mesh.Primitives = append(mesh.Primitives, prim)
	}
	return mesh
}

func (g *GlbExporter) transMaterial(doc *gltf.Document, m *Material) uint32 {
	if idx, ok := g.matIndex[m]; ok {
		return idx
	}
	metallic := float32(m.Metallic)
	roughness := float32(m.Roughness)
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{
				float32(m.Color[0]), float32(m.Color[1]), float32(m.Color[2]), float32(m.Color[3]),
			},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	})
	idx := uint32(len(doc.Materials) - 1)
	g.matIndex[m] = idx
	return idx
}

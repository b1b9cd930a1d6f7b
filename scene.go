package figure3d

import (
	"fmt"

	dmat "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
)

// Object is a mesh placed in the scene.
type Object struct {
	Name     string
	Mesh     *Mesh
	Location dvec3.T
	// Rotation is an XYZ Euler rotation in radians.
	Rotation [3]float64
	Scale    dvec3.T
	Selected bool
}

func (o *Object) quat() quaternion.T {
	return eulerToQuat(o.Rotation)
}

// Matrix returns the object's local-to-world transform.
func (o *Object) Matrix() *dmat.T {
	return composeTRS(o.Location, o.quat(), o.Scale)
}

// Scene 场景，持有对象和材质数据块
type Scene struct {
	Objects   []*Object
	Materials []*Material
	Active    *Object
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) objectNameTaken(name string) bool {
	return s.Object(name) != nil
}

func (s *Scene) materialNameTaken(name string) bool {
	return s.Material(name) != nil
}

// uniqueName 名称冲突时追加 .001、.002 ...
func uniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s.%03d", base, i)
		if !taken(n) {
			return n
		}
	}
}

// Object 按名称查找对象
func (s *Scene) Object(name string) *Object {
	for _, o := range s.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Material 按名称查找材质
func (s *Scene) Material(name string) *Material {
	for _, m := range s.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Rename gives o a name unique within the scene and returns it.
func (s *Scene) Rename(o *Object, name string) string {
	if o.Name == name {
		return name
	}
	o.Name = uniqueName(name, s.objectNameTaken)
	return o.Name
}

func (s *Scene) link(base string, mh *Mesh, location [3]float64) *Object {
	obj := &Object{
		Name:     uniqueName(base, s.objectNameTaken),
		Mesh:     mh,
		Location: dvec3.T(location),
		Scale:    dvec3.T{1, 1, 1},
	}
	s.SelectAll(false)
	obj.Selected = true
	s.Objects = append(s.Objects, obj)
	s.Active = obj
	return obj
}

// AddUVSphere 添加默认细分的经纬球，新对象成为唯一选中的活动对象
func (s *Scene) AddUVSphere(radius float64, location [3]float64) (*Object, error) {
	mh, err := UVSphere(radius, DefaultSphereSegments, DefaultSphereRings)
	if err != nil {
		return nil, err
	}
	return s.link("Sphere", mh, location), nil
}

// AddCylinder 添加默认细分的圆柱
func (s *Scene) AddCylinder(radius, depth float64, location [3]float64) (*Object, error) {
	mh, err := Cylinder(radius, depth, DefaultCylinderVertices)
	if err != nil {
		return nil, err
	}
	return s.link("Cylinder", mh, location), nil
}

// AddCube 添加立方体
func (s *Scene) AddCube(size float64, location [3]float64) (*Object, error) {
	mh, err := Cube(size)
	if err != nil {
		return nil, err
	}
	return s.link("Cube", mh, location), nil
}

// NewMaterial 创建材质数据块，默认颜色与宿主一致
func (s *Scene) NewMaterial(name string) *Material {
	m := newMaterial(uniqueName(name, s.materialNameTaken))
	s.Materials = append(s.Materials, m)
	return m
}

func (s *Scene) SelectAll(selected bool) {
	for _, o := range s.Objects {
		o.Selected = selected
	}
}

// DeleteSelected removes every selected object. The active object is
// cleared when it was deleted.
func (s *Scene) DeleteSelected() int {
	kept := s.Objects[:0]
	removed := 0
	for _, o := range s.Objects {
		if o.Selected {
			removed++
			if s.Active == o {
				s.Active = nil
			}
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(s.Objects); i++ {
		s.Objects[i] = nil
	}
	s.Objects = kept
	return removed
}

// Clear 选中并删除全部对象
func (s *Scene) Clear() {
	s.SelectAll(true)
	s.DeleteSelected()
}

// JoinSelected merges every selected object into the active one. Geometry is
// moved into the active object's local space and material slots are merged.
func (s *Scene) JoinSelected() error {
	active := s.Active
	if active == nil {
		return ErrNoActiveObject
	}
	if !active.Selected {
		return ErrActiveNotSelected
	}

	toLocal := inverseTRS(active.Location, active.quat(), active.Scale)
	normalToLocal := normalInverseTRS(active.quat(), active.Scale)

	dst := active.Mesh
	for _, o := range s.Objects {
		if o == active || !o.Selected {
			continue
		}
		m := dmat.Ident
		m.AssignMul(toLocal, o.Matrix())
		nm := dmat.Ident
		nm.AssignMul(normalToLocal, normalTRS(o.quat(), o.Scale))
		joinMesh(dst, o.Mesh, &m, &nm)
	}

	kept := s.Objects[:0]
	for _, o := range s.Objects {
		if o != active && o.Selected {
			continue
		}
		kept = append(kept, o)
	}
	s.Objects = kept
	return nil
}

func joinMesh(dst, src *Mesh, m, nm *dmat.T) {
	offset := uint32(len(dst.Positions))
	for i, p := range src.Positions {
		dst.Positions = append(dst.Positions, transformPoint(m, p))
		dst.Normals = append(dst.Normals, transformNormal(nm, src.Normals[i]))
	}

	slotMap := make(map[int]int, len(src.Materials))
	for i, mat := range src.Materials {
		slot := -1
		for j, dm := range dst.Materials {
			if dm == mat {
				slot = j
				break
			}
		}
		if slot < 0 {
			dst.Materials = append(dst.Materials, mat)
			slot = len(dst.Materials) - 1
		}
		slotMap[i] = slot
	}

	for _, g := range src.Groups {
		slot, ok := slotMap[g.Slot]
		if !ok {
			slot = g.Slot
		}
		dg := dst.group(slot)
		for _, idx := range g.Indices {
			dg.Indices = append(dg.Indices, idx+offset)
		}
	}
}

// BoundingBox returns the world-space bounds of all objects.
func (s *Scene) BoundingBox() *[6]float64 {
	bbox := dvec3.MinBox
	for _, o := range s.Objects {
		m := o.Matrix()
		for _, p := range o.Mesh.Positions {
			wp := transformPoint(m, p)
			v := dvec3.T{float64(wp[0]), float64(wp[1]), float64(wp[2])}
			bbox.Extend(&v)
		}
	}
	return bbox.Array()
}

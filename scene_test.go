package figure3d

import (
	"errors"
	"math"
	"testing"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueNames(t *testing.T) {
	sc := NewScene()
	a, err := sc.AddUVSphere(1, [3]float64{})
	require.NoError(t, err)
	b, err := sc.AddUVSphere(1, [3]float64{})
	require.NoError(t, err)
	c, err := sc.AddCylinder(1, 2, [3]float64{})
	require.NoError(t, err)

	assert.Equal(t, "Sphere", a.Name)
	assert.Equal(t, "Sphere.001", b.Name)
	assert.Equal(t, "Cylinder", c.Name)
	assert.Equal(t, "Sphere.002", sc.Rename(c, "Sphere"))

	m1 := sc.NewMaterial("Material")
	m2 := sc.NewMaterial("Material")
	assert.Equal(t, "Material.001", m2.Name)
	assert.Same(t, m1, sc.Material("Material"))
	assert.Equal(t, [4]float64{0.8, 0.8, 0.8, 1}, m1.Color)
	assert.Equal(t, 0.5, m1.Roughness)
}

func TestAddSelectsOnlyNewObject(t *testing.T) {
	sc := NewScene()
	a, _ := sc.AddCube(2, [3]float64{})
	b, _ := sc.AddCube(2, [3]float64{1, 0, 0})

	assert.False(t, a.Selected)
	assert.True(t, b.Selected)
	assert.Same(t, b, sc.Active)
}

func TestClear(t *testing.T) {
	sc := NewScene()
	for i := 0; i < 3; i++ {
		_, err := sc.AddCube(1, [3]float64{float64(i), 0, 0})
		require.NoError(t, err)
	}
	sc.SelectAll(false)
	sc.Objects[2].Selected = true
	assert.Equal(t, 1, sc.DeleteSelected())
	assert.Len(t, sc.Objects, 2)
	assert.Nil(t, sc.Active)

	sc.Clear()
	assert.Empty(t, sc.Objects)
}

func TestMaterialSlots(t *testing.T) {
	sc := NewScene()
	o, _ := sc.AddCube(1, [3]float64{})
	red := sc.NewMaterial("Red")
	blue := sc.NewMaterial("Blue")

	o.Mesh.AssignMaterial(red)
	o.Mesh.AssignMaterial(blue)
	require.Len(t, o.Mesh.Materials, 1)
	assert.Same(t, blue, o.Mesh.SlotMaterial(0))

	o.Mesh.AppendMaterial(red)
	assert.Len(t, o.Mesh.Materials, 2)
	assert.Nil(t, o.Mesh.SlotMaterial(5))

	assert.Error(t, red.SetColor([4]float64{1.2, 0, 0, 1}))
	assert.Equal(t, [3]byte{204, 204, 204}, red.RGB8())
}

func TestEulerOrder(t *testing.T) {
	o := &Object{Scale: dvec3.T{1, 1, 1}, Rotation: [3]float64{math.Pi / 2, 0, math.Pi / 2}}
	v := dvec3.T{0, 1, 0}
	got := o.Matrix().MulVec3(&v)
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, 0, got[1], 1e-9)
	assert.InDelta(t, 1, got[2], 1e-9)
}

func TestInverseTRS(t *testing.T) {
	loc := dvec3.T{1, -2, 3}
	rot := eulerToQuat([3]float64{0.3, -0.7, 1.1})
	scale := dvec3.T{0.5, 2, 1.5}

	p := dvec3.T{0.25, 0.5, -4}
	w := composeTRS(loc, rot, scale).MulVec3(&p)
	back := inverseTRS(loc, rot, scale).MulVec3(&w)
	for i := range p {
		assert.InDelta(t, p[i], back[i], 1e-9)
	}
}

func TestJoinSelected(t *testing.T) {
	sc := NewScene()
	a, _ := sc.AddUVSphere(1, [3]float64{0, 0, 1})
	a.Scale = dvec3.T{0.8, 1.2, 1}
	b, _ := sc.AddCylinder(0.2, 1, [3]float64{1, 1, 2})
	b.Rotation = [3]float64{0.3, 0, 0.2}
	c, _ := sc.AddCube(1, [3]float64{-2, 0, 0})

	red := sc.NewMaterial("Red")
	blue := sc.NewMaterial("Blue")
	a.Mesh.AppendMaterial(red)
	b.Mesh.AppendMaterial(blue)
	c.Mesh.AppendMaterial(red)

	before := *sc.BoundingBox()
	verts := a.Mesh.VertexCount() + b.Mesh.VertexCount() + c.Mesh.VertexCount()
	tris := a.Mesh.TriangleCount() + b.Mesh.TriangleCount() + c.Mesh.TriangleCount()

	sc.SelectAll(true)
	sc.Active = a
	require.NoError(t, sc.JoinSelected())

	require.Len(t, sc.Objects, 1)
	assert.Same(t, a, sc.Objects[0])
	assert.Equal(t, verts, a.Mesh.VertexCount())
	assert.Equal(t, tris, a.Mesh.TriangleCount())
	assert.Equal(t, []*Material{red, blue}, a.Mesh.Materials)
	assert.Len(t, a.Mesh.Groups, 2)
	assert.True(t, Near(before, *sc.BoundingBox(), 1e-4))

	for _, n := range a.Mesh.Normals {
		assert.InDelta(t, 1, length(n), 1e-4)
	}
}

func TestJoinErrors(t *testing.T) {
	sc := NewScene()
	assert.True(t, errors.Is(sc.JoinSelected(), ErrNoActiveObject))

	sc.AddCube(1, [3]float64{})
	sc.SelectAll(false)
	assert.True(t, errors.Is(sc.JoinSelected(), ErrActiveNotSelected))
}

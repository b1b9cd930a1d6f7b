package figure3d

import "fmt"

// Material 纯色 PBR 材质，颜色为线性 RGBA
type Material struct {
	Name      string
	Color     [4]float64
	Metallic  float64
	Roughness float64
}

func newMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Color:     [4]float64{0.8, 0.8, 0.8, 1},
		Metallic:  0,
		Roughness: 0.5,
	}
}

// SetColor sets the base color. Components must lie in [0, 1].
func (m *Material) SetColor(c [4]float64) error {
	for i, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("material %s: color component %d out of range: %v", m.Name, i, v)
		}
	}
	m.Color = c
	return nil
}

// RGB8 返回 8 位颜色，MST 与预览使用
func (m *Material) RGB8() [3]byte {
	return [3]byte{
		byte(m.Color[0]*255 + 0.5),
		byte(m.Color[1]*255 + 0.5),
		byte(m.Color[2]*255 + 0.5),
	}
}

// AppendMaterial 追加一个材质槽
func (m *Mesh) AppendMaterial(mat *Material) {
	m.Materials = append(m.Materials, mat)
}

// AssignMaterial 有材质槽时替换第一个槽，否则追加
func (m *Mesh) AssignMaterial(mat *Material) {
	if len(m.Materials) > 0 {
		m.Materials[0] = mat
		return
	}
	m.Materials = append(m.Materials, mat)
}

// SlotMaterial returns the material bound to slot, or nil when the slot is empty.
func (m *Mesh) SlotMaterial(slot int) *Material {
	if slot < 0 || slot >= len(m.Materials) {
		return nil
	}
	return m.Materials[slot]
}

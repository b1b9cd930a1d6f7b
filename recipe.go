package figure3d

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed recipes/*.yaml
var recipeFS embed.FS

// 基本体类型
const (
	ShapeUVSphere = "uv_sphere"
	ShapeCylinder = "cylinder"
	ShapeCube     = "cube"
)

// Recipe 描述一个由基本体拼成的造型
type Recipe struct {
	Name      string           `yaml:"name"`
	Materials []RecipeMaterial `yaml:"materials"`
	Parts     []RecipePart     `yaml:"parts"`
	Join      bool             `yaml:"join,omitempty"`
	Active    string           `yaml:"active,omitempty"`
}

type RecipeMaterial struct {
	Name      string      `yaml:"name"`
	Color     *[4]float64 `yaml:"color,omitempty"` // 缺省为默认灰色
	Metallic  *float64    `yaml:"metallic,omitempty"`
	Roughness *float64    `yaml:"roughness,omitempty"`
}

type RecipePart struct {
	Name     string      `yaml:"name"`
	Shape    string      `yaml:"shape"`
	Radius   float64     `yaml:"radius,omitempty"`
	Depth    float64     `yaml:"depth,omitempty"`
	Size     float64     `yaml:"size,omitempty"`
	Location [3]float64  `yaml:"location"`
	Rotation [3]float64  `yaml:"rotation,omitempty"`
	Scale    *[3]float64 `yaml:"scale,omitempty"`
	Material string      `yaml:"material,omitempty"`
}

func ParseRecipe(data []byte) (*Recipe, error) {
	r := &Recipe{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecipe(data)
}

// FigureRecipe returns the recipe form of a built-in figure.
func FigureRecipe(name string) (*Recipe, error) {
	data, err := recipeFS.ReadFile("recipes/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFigure, name)
	}
	return ParseRecipe(data)
}

// Validate 检查形状、材质引用与部件名称
func (r *Recipe) Validate() error {
	if len(r.Parts) == 0 {
		return errors.New("recipe has no parts")
	}
	mats := make(map[string]bool, len(r.Materials))
	for _, m := range r.Materials {
		if m.Name == "" {
			return errors.New("recipe material without name")
		}
		if m.Color != nil {
			for i, v := range m.Color {
				if v < 0 || v > 1 {
					return fmt.Errorf("material %s: color component %d out of range: %v", m.Name, i, v)
				}
			}
		}
		mats[m.Name] = true
	}
	parts := make(map[string]bool, len(r.Parts))
	for i, p := range r.Parts {
		if p.Name != "" {
			if parts[p.Name] {
				return fmt.Errorf("duplicate part name %q", p.Name)
			}
			parts[p.Name] = true
		}
		switch p.Shape {
		case ShapeUVSphere, ShapeCylinder, ShapeCube:
		default:
			return fmt.Errorf("part %d: unknown shape %q", i, p.Shape)
		}
		if p.Material != "" && !mats[p.Material] {
			return fmt.Errorf("part %d: unknown material %q", i, p.Material)
		}
	}
	if r.Join && r.Active != "" && !parts[r.Active] {
		return fmt.Errorf("join active part %q not found", r.Active)
	}
	return nil
}

// Build 清空场景后按配方添加部件、创建材质，并在需要时合并
func (r *Recipe) Build(s *Scene) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.Clear()

	objs := make(map[string]*Object, len(r.Parts))
	ordered := make([]*Object, 0, len(r.Parts))
	for i, p := range r.Parts {
		var (
			o   *Object
			err error
		)
		switch p.Shape {
		case ShapeUVSphere:
			o, err = s.AddUVSphere(p.Radius, p.Location)
		case ShapeCylinder:
			o, err = s.AddCylinder(p.Radius, p.Depth, p.Location)
		case ShapeCube:
			size := p.Size
			if size == 0 {
				size = DefaultCubeSize
			}
			o, err = s.AddCube(size, p.Location)
		}
		if err != nil {
			return fmt.Errorf("part %d (%s): %w", i, p.Name, err)
		}
		if p.Name != "" {
			s.Rename(o, p.Name)
			objs[p.Name] = o
		}
		o.Rotation = p.Rotation
		if p.Scale != nil {
			o.Scale = *p.Scale
		}
		ordered = append(ordered, o)
	}

	mats := make(map[string]*Material, len(r.Materials))
	for _, rm := range r.Materials {
		m := s.NewMaterial(rm.Name)
		if rm.Color != nil {
			if err := m.SetColor(*rm.Color); err != nil {
				return err
			}
		}
		if rm.Metallic != nil {
			m.Metallic = *rm.Metallic
		}
		if rm.Roughness != nil {
			m.Roughness = *rm.Roughness
		}
		mats[rm.Name] = m
	}
	for i, p := range r.Parts {
		if p.Material != "" {
			ordered[i].Mesh.AssignMaterial(mats[p.Material])
		}
	}

	if !r.Join {
		return nil
	}
	s.SelectAll(true)
	s.Active = ordered[0]
	if r.Active != "" {
		s.Active = objs[r.Active]
	}
	return s.JoinSelected()
}

// Marshal 序列化为 YAML
func (r *Recipe) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

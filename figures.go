package figure3d

import (
	"fmt"
	"sort"
)

const (
	RABBIT = "rabbit"
	ROBOT  = "robot"
)

// Builder populates a scene.
type Builder func(s *Scene) error

var figures = map[string]Builder{
	RABBIT: Rabbit,
	ROBOT:  Robot,
}

// Figures 返回内置造型名称
func Figures() []string {
	names := make([]string, 0, len(figures))
	for n := range figures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func FigureFactory(name string) Builder {
	return figures[name]
}

// BuildFigure 在新场景中构建内置造型
func BuildFigure(name string) (*Scene, error) {
	b := FigureFactory(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFigure, name)
	}
	sc := NewScene()
	if err := b(sc); err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return sc, nil
}

// Rabbit 用球体和圆柱拼出一只白色兔子，最后合并为一个对象
func Rabbit(s *Scene) error {
	s.Clear()

	// 身体（椭球）
	body, err := s.AddUVSphere(1, [3]float64{0, 0, 1})
	if err != nil {
		return err
	}
	body.Scale = [3]float64{0.8, 1.2, 1}

	// 头
	head, err := s.AddUVSphere(0.6, [3]float64{0, 0, 2.2})
	if err != nil {
		return err
	}

	// 耳朵
	leftEar, err := s.AddCylinder(0.15, 1.2, [3]float64{-0.3, -0.2, 3})
	if err != nil {
		return err
	}
	leftEar.Rotation = [3]float64{0.3, 0, -0.2}

	rightEar, err := s.AddCylinder(0.15, 1.2, [3]float64{0.3, -0.2, 3})
	if err != nil {
		return err
	}
	rightEar.Rotation = [3]float64{0.3, 0, 0.2}

	// 腿
	leftLeg, err := s.AddCylinder(0.2, 0.8, [3]float64{-0.4, 0.5, 0.4})
	if err != nil {
		return err
	}
	rightLeg, err := s.AddCylinder(0.2, 0.8, [3]float64{0.4, 0.5, 0.4})
	if err != nil {
		return err
	}

	// 尾巴
	tail, err := s.AddUVSphere(0.25, [3]float64{0, 1, 0.8})
	if err != nil {
		return err
	}

	mat := s.NewMaterial("RabbitMaterial")
	if err := mat.SetColor([4]float64{0.95, 0.95, 0.95, 1}); err != nil {
		return err
	}
	for _, o := range []*Object{body, head, leftEar, rightEar, leftLeg, rightLeg, tail} {
		o.Mesh.AssignMaterial(mat)
	}

	s.SelectAll(true)
	s.Active = body
	return s.JoinSelected()
}

// Robot 头部为球体，躯干和四肢为圆柱，各部件保持独立
func Robot(s *Scene) error {
	s.Clear()

	type part struct {
		name     string
		sphere   bool
		radius   float64
		depth    float64
		location [3]float64
		rotation [3]float64
	}
	parts := []part{
		{name: "RobotHead", sphere: true, radius: 0.5, location: [3]float64{0, 0, 2.5}},
		{name: "RobotBody", radius: 0.7, depth: 1.5, location: [3]float64{0, 0, 1}},
		{name: "RobotLeftArm", radius: 0.2, depth: 1, location: [3]float64{-1.2, 0, 1.5}, rotation: [3]float64{0, 0.5, 0}},
		{name: "RobotRightArm", radius: 0.2, depth: 1, location: [3]float64{1.2, 0, 1.5}, rotation: [3]float64{0, -0.5, 0}},
		{name: "RobotLeftLeg", radius: 0.3, depth: 1.2, location: [3]float64{-0.5, 0, 0}},
		{name: "RobotRightLeg", radius: 0.3, depth: 1.2, location: [3]float64{0.5, 0, 0}},
	}

	objs := make([]*Object, 0, len(parts))
	for _, p := range parts {
		var (
			o   *Object
			err error
		)
		if p.sphere {
			o, err = s.AddUVSphere(p.radius, p.location)
		} else {
			o, err = s.AddCylinder(p.radius, p.depth, p.location)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
		s.Rename(o, p.name)
		o.Rotation = p.rotation
		objs = append(objs, o)
	}

	mat := s.NewMaterial("RobotMaterial")
	if err := mat.SetColor([4]float64{0.4, 0.4, 0.8, 1}); err != nil {
		return err
	}
	for _, o := range objs {
		o.Mesh.AppendMaterial(mat)
	}
	return nil
}

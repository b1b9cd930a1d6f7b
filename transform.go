package figure3d

import (
	dmat "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

var (
	zeroVec  = dvec3.T{0, 0, 0}
	unitVec  = dvec3.T{1, 1, 1}
	identRot = quaternion.T{0, 0, 0, 1}
)

// eulerToQuat 按 XYZ 顺序的欧拉角（先 X 后 Y 再 Z）生成四元数
func eulerToQuat(e [3]float64) quaternion.T {
	qx := quaternion.FromXAxisAngle(e[0])
	qy := quaternion.FromYAxisAngle(e[1])
	qz := quaternion.FromZAxisAngle(e[2])
	return quaternion.Mul3(&qz, &qy, &qx)
}

func conjugate(q quaternion.T) quaternion.T {
	return quaternion.T{-q[0], -q[1], -q[2], q[3]}
}

func reciprocal(v dvec3.T) dvec3.T {
	var r dvec3.T
	for i := range v {
		if v[i] != 0 {
			r[i] = 1 / v[i]
		}
	}
	return r
}

// composeTRS returns T·R·S.
func composeTRS(loc dvec3.T, rot quaternion.T, scale dvec3.T) *dmat.T {
	return dmat.Compose(&loc, &rot, &scale)
}

// inverseTRS returns (T·R·S)⁻¹ = S⁻¹·R⁻¹·T⁻¹.
func inverseTRS(loc dvec3.T, rot quaternion.T, scale dvec3.T) *dmat.T {
	invScale := reciprocal(scale)
	invRot := conjugate(rot)
	negLoc := dvec3.T{-loc[0], -loc[1], -loc[2]}

	s := dmat.Compose(&zeroVec, &identRot, &invScale)
	r := dmat.Compose(&zeroVec, &invRot, &unitVec)
	t := dmat.Compose(&negLoc, &identRot, &unitVec)

	sr := dmat.Ident
	sr.AssignMul(s, r)
	out := dmat.Ident
	out.AssignMul(&sr, t)
	return &out
}

// normalTRS 法线使用逆转置矩阵，即 R·S⁻¹
func normalTRS(rot quaternion.T, scale dvec3.T) *dmat.T {
	invScale := reciprocal(scale)
	return dmat.Compose(&zeroVec, &rot, &invScale)
}

// normalInverseTRS 是 (T·R·S)⁻¹ 的法线矩阵，即 S·R⁻¹
func normalInverseTRS(rot quaternion.T, scale dvec3.T) *dmat.T {
	invRot := conjugate(rot)
	s := dmat.Compose(&zeroVec, &identRot, &scale)
	r := dmat.Compose(&zeroVec, &invRot, &unitVec)
	out := dmat.Ident
	out.AssignMul(s, r)
	return &out
}

func transformPoint(m *dmat.T, p vec3.T) vec3.T {
	dv := dvec3.T{float64(p[0]), float64(p[1]), float64(p[2])}
	dv = m.MulVec3(&dv)
	return vec3.T{float32(dv[0]), float32(dv[1]), float32(dv[2])}
}

func transformNormal(m *dmat.T, n vec3.T) vec3.T {
	dv := dvec3.T{float64(n[0]), float64(n[1]), float64(n[2])}
	dv = m.MulVec3(&dv)
	if l := dv.Length(); l > 0 {
		dv.Scale(1 / l)
	}
	return vec3.T{float32(dv[0]), float32(dv[1]), float32(dv[2])}
}

// zUpToYUp 将 Z 轴向上的坐标转换为 glTF 的 Y 轴向上
func zUpToYUp(v [3]float32) [3]float32 {
	return [3]float32{v[0], v[2], -v[1]}
}

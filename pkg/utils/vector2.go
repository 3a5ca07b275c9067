// Package utils 提供粒子系统中常用的工具类型与函数
//
// vector2.go 定义二维向量值类型，用于位置、速度和力的计算。
// Vector2 使用值语义：所有运算返回新值，不修改接收者。
package utils

import "math"

// Vector2 is a 2D point or direction in world space (pixels).
type Vector2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec2 is shorthand for Vector2{X: x, Y: y}.
func Vec2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s.
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Mul 分量相乘（用于逐分量阻尼）
func (v Vector2) Mul(o Vector2) Vector2 {
	return Vector2{X: v.X * o.X, Y: v.Y * o.Y}
}

// Clone returns a copy of v. Vector2 is a value type, so this is the same as
// assignment; it exists so call sites that hand out a vector read explicitly.
func (v Vector2) Clone() Vector2 {
	return v
}

// Len returns the Euclidean length of v.
func (v Vector2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vector2) Normalize() Vector2 {
	l := v.Len()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / l, Y: v.Y / l}
}

// Lerp 线性插值：t=0 返回 v，t=1 返回 o
func (v Vector2) Lerp(o Vector2, t float64) Vector2 {
	return Vector2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// IsFinite reports whether both components are finite numbers.
func (v Vector2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

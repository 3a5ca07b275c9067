// Package render 提供粒子系统的渲染后端
//
// EbitenRenderer 用 DrawTriangles 批量绘制带纹理的四边形；
// TerminalRenderer 把粒子映射为 tcell 屏幕上的字符格。
// 两者都实现 systems.RenderBackend，每帧直接读取粒子状态。
package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/particles/internal/particle"
	"github.com/decker502/particles/pkg/systems"
	"github.com/decker502/particles/pkg/utils"
)

const (
	// DefaultTextureSize is the edge length of the built-in textures.
	DefaultTextureSize = 32

	// 每批顶点上限（uint16 索引）
	maxBatchVertices = math.MaxUint16 - 3
)

// sprite is the drawable EbitenRenderer hands out for one particle.
type sprite struct {
	p        *particle.Particle
	image    *ebiten.Image
	additive bool
	index    int // position in the render list, -1 when detached
}

// EbitenRenderer draws particles as textured quads.
//
// Textures are looked up by Particle.Texture; unknown or empty names use
// "circle". Extra["blend"] == "additive" selects additive blending.
type EbitenRenderer struct {
	// Offset is subtracted from world positions (camera).
	Offset utils.Vector2

	textures map[string]*ebiten.Image
	sprites  []*sprite

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewEbitenRenderer creates a renderer with the built-in "circle" and
// "square" textures.
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{
		textures: map[string]*ebiten.Image{
			"circle": MakeTexture(DefaultTextureSize, false),
			"square": MakeTexture(DefaultTextureSize, true),
		},
	}
}

// SetTexture registers img under name.
func (r *EbitenRenderer) SetTexture(name string, img *ebiten.Image) {
	r.textures[name] = img
}

// MakeTexture draws a white size×size texture: a filled square, or an
// antialiased disc. Tint is applied per vertex when drawing.
func MakeTexture(size int, square bool) *ebiten.Image {
	img := ebiten.NewImage(size, size)
	s := float32(size)
	if square {
		vector.DrawFilledRect(img, 0, 0, s, s, color.White, false)
	} else {
		vector.DrawFilledCircle(img, s/2, s/2, s/2, color.White, true)
	}
	return img
}

func (r *EbitenRenderer) texture(name string) *ebiten.Image {
	if img, ok := r.textures[name]; ok {
		return img
	}
	return r.textures["circle"]
}

// NewDrawable implements systems.RenderBackend.
func (r *EbitenRenderer) NewDrawable(p *particle.Particle) systems.Drawable {
	blend, _ := p.Extra["blend"].(string)
	return &sprite{
		p:        p,
		image:    r.texture(p.Texture),
		additive: blend == "additive",
		index:    -1,
	}
}

// AddDrawable implements systems.RenderBackend.
func (r *EbitenRenderer) AddDrawable(d systems.Drawable) {
	s, ok := d.(*sprite)
	if !ok || s.index >= 0 {
		return
	}
	s.index = len(r.sprites)
	r.sprites = append(r.sprites, s)
}

// RemoveDrawable implements systems.RenderBackend. Removal swaps the last
// sprite into the freed slot, so draw order is not spawn order.
func (r *EbitenRenderer) RemoveDrawable(d systems.Drawable) {
	s, ok := d.(*sprite)
	if !ok || s.index < 0 || s.index >= len(r.sprites) || r.sprites[s.index] != s {
		return
	}
	last := len(r.sprites) - 1
	r.sprites[s.index] = r.sprites[last]
	r.sprites[s.index].index = s.index
	r.sprites[last] = nil
	r.sprites = r.sprites[:last]
	s.index = -1
}

// Len returns the number of sprites in the render list.
func (r *EbitenRenderer) Len() int {
	return len(r.sprites)
}

// Draw renders every visible sprite onto screen, batched by texture and
// blend mode. Normal sprites are drawn first so additive glow lands on top.
func (r *EbitenRenderer) Draw(screen *ebiten.Image) {
	type batchKey struct {
		img      *ebiten.Image
		additive bool
	}
	batches := make(map[batchKey][]*sprite)
	var keys []batchKey
	for _, s := range r.sprites {
		if !s.p.Alive() || s.p.Alpha <= 0 {
			continue
		}
		key := batchKey{s.image, s.additive}
		if _, exists := batches[key]; !exists {
			keys = append(keys, key)
		}
		batches[key] = append(batches[key], s)
	}

	for _, additive := range []bool{false, true} {
		for _, key := range keys {
			if key.additive != additive {
				continue
			}
			r.drawBatch(screen, key.img, additive, batches[key])
		}
	}
}

func (r *EbitenRenderer) drawBatch(screen, img *ebiten.Image, additive bool, sprites []*sprite) {
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	if additive {
		// 加法混合模式（发光效果）
		op.Blend = ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	}

	flush := func() {
		if len(r.vertices) > 0 {
			screen.DrawTriangles(r.vertices, r.indices, img, op)
		}
		// 保留容量，避免每帧分配
		r.vertices = r.vertices[:0]
		r.indices = r.indices[:0]
	}

	bounds := img.Bounds()
	for _, s := range sprites {
		if len(r.vertices)+4 > maxBatchVertices {
			flush()
		}
		quad := buildParticleVertices(s.p, bounds.Dx(), bounds.Dy(), r.Offset)
		base := uint16(len(r.vertices))
		r.vertices = append(r.vertices, quad[:]...)
		r.indices = append(r.indices,
			base+0, base+1, base+2, // 第一个三角形
			base+1, base+3, base+2, // 第二个三角形
		)
	}
	flush()
}

// buildParticleVertices returns the four corners (top-left, top-right,
// bottom-left, bottom-right) of the particle quad: the w×h texture centered
// on the particle, rotated by Rotation degrees, scaled by Scale, translated
// to Position - offset. Vertex colors carry the tint and alpha.
func buildParticleVertices(p *particle.Particle, w, h int, offset utils.Vector2) [4]ebiten.Vertex {
	hw, hh := float64(w)/2, float64(h)/2
	corners := [4][2]float64{
		{-hw, -hh}, // 左上
		{hw, -hh},  // 右上
		{-hw, hh},  // 左下
		{hw, hh},   // 右下
	}
	src := [4][2]float32{
		{0, 0},
		{float32(w), 0},
		{0, float32(h)},
		{float32(w), float32(h)},
	}

	radians := p.Rotation * math.Pi / 180.0
	cosTheta, sinTheta := math.Cos(radians), math.Sin(radians)
	cr, cg, cb := unpackTint(p.Tint)

	var out [4]ebiten.Vertex
	for i, c := range corners {
		// 旋转 → 缩放 → 平移
		x := (c[0]*cosTheta - c[1]*sinTheta) * p.Scale
		y := (c[0]*sinTheta + c[1]*cosTheta) * p.Scale
		out[i] = ebiten.Vertex{
			DstX:   float32(p.Position.X - offset.X + x),
			DstY:   float32(p.Position.Y - offset.Y + y),
			SrcX:   src[i][0],
			SrcY:   src[i][1],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: float32(clamp01(p.Alpha)),
		}
	}
	return out
}

// unpackTint splits 0xRRGGBB into [0, 1] channels.
func unpackTint(tint uint32) (r, g, b float32) {
	r = float32((tint>>16)&0xff) / 255
	g = float32((tint>>8)&0xff) / 255
	b = float32(tint&0xff) / 255
	return r, g, b
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

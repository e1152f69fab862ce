// Package sprites provides per-pixel occupancy masks and the sprite sheet
// geometry shared by collision and rendering.
package sprites

import (
	"image"
	"image/color"
	"math/bits"
)

// Mask is a bit-packed per-pixel occupancy footprint.
// Row y, column x lives at bit x%64 of word y*stride + x/64.
type Mask struct {
	W, H   int
	stride int // words per row
	bits   []uint64
}

// NewMask creates an empty mask of the given size.
func NewMask(w, h int) *Mask {
	if w < 0 || h < 0 {
		panic("sprites: negative mask size")
	}
	stride := (w + 63) / 64
	return &Mask{
		W:      w,
		H:      h,
		stride: stride,
		bits:   make([]uint64, stride*h),
	}
}

// RectMask creates a fully occupied w×h mask.
func RectMask(w, h int) *Mask {
	m := NewMask(w, h)
	m.Fill()
	return m
}

// Fill sets every pixel.
func (m *Mask) Fill() {
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			m.Set(x, y, true)
		}
	}
}

// Set marks or clears a pixel. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	idx := y*m.stride + x/64
	bit := uint64(1) << uint(x%64)
	if on {
		m.bits[idx] |= bit
	} else {
		m.bits[idx] &^= bit
	}
}

// Get reports whether a pixel is occupied. Out-of-range is empty.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.bits[y*m.stride+x/64]&(uint64(1)<<uint(x%64)) != 0
}

// Count returns the number of occupied pixels.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// FlipVertical returns a copy mirrored top to bottom.
func (m *Mask) FlipVertical() *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		src := m.bits[y*m.stride : (y+1)*m.stride]
		dst := out.bits[(m.H-1-y)*m.stride : (m.H-y)*m.stride]
		copy(dst, src)
	}
	return out
}

// span returns 64 pixels of a row starting at column col; bit i is pixel col+i.
// Columns outside [0, W) read as empty.
func (m *Mask) span(row, col int) uint64 {
	if row < 0 || row >= m.H || col >= m.W || col <= -64 {
		return 0
	}
	base := row * m.stride
	if col < 0 {
		return m.bits[base] << uint(-col)
	}
	wi, off := col/64, uint(col%64)
	v := m.bits[base+wi] >> off
	if off != 0 && wi+1 < m.stride {
		v |= m.bits[base+wi+1] << (64 - off)
	}
	return v
}

// Overlap places other at offset (dx, dy) relative to m and returns the first
// pixel, in m's coordinates, occupied in both. ok is false when nothing overlaps.
func (m *Mask) Overlap(other *Mask, dx, dy int) (x, y int, ok bool) {
	x0, x1 := max(0, dx), min(m.W, dx+other.W)
	y0, y1 := max(0, dy), min(m.H, dy+other.H)
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, false
	}

	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col += 64 {
			w := m.span(row, col) & other.span(row-dy, col-dx)
			if limit := x1 - col; limit < 64 {
				w &= (uint64(1) << uint(limit)) - 1
			}
			if w != 0 {
				return col + bits.TrailingZeros64(w), row, true
			}
		}
	}
	return 0, 0, false
}

// Overlaps is Overlap without the coordinates.
func (m *Mask) Overlaps(other *Mask, dx, dy int) bool {
	_, _, ok := m.Overlap(other, dx, dy)
	return ok
}

// FromImage builds a mask from pixels whose alpha exceeds threshold (0-255).
func FromImage(img image.Image, threshold uint8) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if uint8(a>>8) > threshold {
				m.Set(x-b.Min.X, y-b.Min.Y, true)
			}
		}
	}
	return m
}

// Image paints occupied pixels with c on a transparent background.
func (m *Mask) Image(c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Get(x, y) {
				img.Set(x, y, c)
			}
		}
	}
	return img
}

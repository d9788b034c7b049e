package panel

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Frame is a monochrome pixel buffer in UI orientation.
// It implements draw.Image so font.Drawer and stdlib draw work on it.
// One byte per pixel while composing; Packed() emits 1bpp for drivers.
type Frame struct {
	size image.Point
	pix  []uint8 // 0=black 1=white
}

func NewFrame(size image.Point) *Frame {
	f := &Frame{
		size: size,
		pix:  make([]uint8, size.X*size.Y),
	}
	f.Fill(true)
	return f
}

func (f *Frame) ColorModel() color.Model { return color.GrayModel }
func (f *Frame) Bounds() image.Rectangle { return image.Rectangle{Max: f.size} }
func (f *Frame) Size() image.Point       { return f.size }

func (f *Frame) At(x, y int) color.Color {
	if f.white(x, y) {
		return color.Gray{Y: 0xff}
	}
	return color.Gray{Y: 0}
}

func (f *Frame) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= f.size.X || y >= f.size.Y {
		return
	}
	g := color.GrayModel.Convert(c).(color.Gray)
	v := uint8(0)
	if g.Y >= 0x80 {
		v = 1
	}
	f.pix[y*f.size.X+x] = v
}

func (f *Frame) white(x, y int) bool {
	if x < 0 || y < 0 || x >= f.size.X || y >= f.size.Y {
		return true
	}
	return f.pix[y*f.size.X+x] != 0
}

func (f *Frame) Fill(white bool) {
	v := uint8(0)
	if white {
		v = 1
	}
	for i := range f.pix {
		f.pix[i] = v
	}
}

func (f *Frame) SetPixel(x, y int, white bool) {
	if x < 0 || y < 0 || x >= f.size.X || y >= f.size.Y {
		return
	}
	v := uint8(0)
	if white {
		v = 1
	}
	f.pix[y*f.size.X+x] = v
}

// Rect fills r, clipped to frame bounds.
func (f *Frame) Rect(r image.Rectangle, white bool) {
	r = r.Intersect(f.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.SetPixel(x, y, white)
		}
	}
}

// Outline draws a 1px border of r.
func (f *Frame) Outline(r image.Rectangle, white bool) {
	for x := r.Min.X; x < r.Max.X; x++ {
		f.SetPixel(x, r.Min.Y, white)
		f.SetPixel(x, r.Max.Y-1, white)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		f.SetPixel(r.Min.X, y, white)
		f.SetPixel(r.Max.X-1, y, white)
	}
}

func (f *Frame) HLine(x1, x2, y int, white bool) {
	for x := x1; x <= x2; x++ {
		f.SetPixel(x, y, white)
	}
}

// Text draws s with its baseline at (x, y). White text comes out on
// selected (black) buttons.
func (f *Frame) Text(x, y int, face font.Face, s string, white bool) {
	src := image.NewUniform(color.Gray{Y: 0})
	if white {
		src = image.NewUniform(color.Gray{Y: 0xff})
	}
	d := font.Drawer{
		Dst:  f,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// TextWidth measures s in pixels without drawing.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Packed returns the frame as 1 bit per pixel, row-major, MSB first,
// rows padded to whole bytes. Bit set = white, e-paper convention.
func (f *Frame) Packed() []byte {
	stride := (f.size.X + 7) / 8
	out := make([]byte, stride*f.size.Y)
	for y := 0; y < f.size.Y; y++ {
		for x := 0; x < f.size.X; x++ {
			if f.white(x, y) {
				out[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out
}

// Equal reports whether two frames have identical pixels.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || f.size != other.size {
		return false
	}
	for i := range f.pix {
		if f.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// Copy returns an independent duplicate of the frame.
func (f *Frame) Copy() *Frame {
	n := NewFrame(f.size)
	copy(n.pix, f.pix)
	return n
}

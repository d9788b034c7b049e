package panel

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/basicfont"
)

func TestFramePacked(t *testing.T) {
	t.Parallel()

	f := NewFrame(image.Point{X: 10, Y: 2})
	f.Fill(false)
	f.SetPixel(0, 0, true)
	f.SetPixel(9, 1, true)

	packed := f.Packed()
	assert.Equal(t, 4, len(packed)) // 2 bytes per row
	assert.Equal(t, byte(0x80), packed[0])
	assert.Equal(t, byte(0x00), packed[1])
	assert.Equal(t, byte(0x00), packed[2])
	assert.Equal(t, byte(0x40), packed[3])
}

func TestFrameRect(t *testing.T) {
	t.Parallel()

	f := NewFrame(image.Point{X: 8, Y: 8})
	f.Rect(image.Rect(2, 2, 6, 6), false)
	assert.True(t, f.white(1, 1))
	assert.False(t, f.white(2, 2))
	assert.False(t, f.white(5, 5))
	assert.True(t, f.white(6, 6))

	// out of bounds draw must clip, not panic
	f.Rect(image.Rect(-5, -5, 100, 100), false)
	assert.False(t, f.white(0, 0))
}

func TestFrameEqualCopy(t *testing.T) {
	t.Parallel()

	a := NewFrame(image.Point{X: 16, Y: 16})
	a.Text(1, 12, basicfont.Face7x13, "x", false)
	b := a.Copy()
	assert.True(t, a.Equal(b))

	b.SetPixel(0, 0, false)
	assert.False(t, a.Equal(b))
}

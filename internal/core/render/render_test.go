package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorString(t *testing.T) {
	assert.Equal(t, "#800080ff", RGB(128, 0, 128).String())
	assert.Equal(t, "#00000000", Color{}.String())
	assert.Equal(t, "#0a0b0c40", RGBA(10, 11, 12, 64).String())
	assert.Equal(t, "#ffffffff", Gray(255).String())
}

func TestColorScaleAndChannel(t *testing.T) {
	assert.Equal(t, RGB(128, 0, 64), RGB(255, 0, 128).Scale(0.5))
	assert.Equal(t, uint8(0), Channel(-3))
	assert.Equal(t, uint8(255), Channel(300))
	assert.Equal(t, uint8(2), Channel(2.5))
	assert.Equal(t, Gray(128), GrayLevel(127.6))
}

func TestFromTriple(t *testing.T) {
	assert.Equal(t, RGB(1, 2, 3), FromTriple([]int{1, 2, 3}))
	assert.Equal(t, RGBA(1, 2, 3, 4), FromTriple([]int{1, 2, 3, 4}))
	assert.Equal(t, RGB(0, 0, 0), FromTriple(nil))
}

func TestPictureSetGet(t *testing.T) {
	p := NewPicture(4, 3)
	require.Equal(t, Color{}, p.Get(1, 1))

	p.Set(1, 2, RGB(9, 8, 7))
	require.Equal(t, RGB(9, 8, 7), p.Get(1, 2))

	// out of bounds is ignored on write and transparent on read
	p.Set(4, 0, RGB(1, 1, 1))
	p.Set(-1, 0, RGB(1, 1, 1))
	require.Equal(t, Color{}, p.Get(4, 0))
	require.Equal(t, Color{}, p.Get(0, 0))

	require.Len(t, p.Pix(), 4*3*4)
	require.Equal(t, 4, p.Image().Bounds().Dx())
}

func TestPictureDigest(t *testing.T) {
	a := NewPicture(2, 2)
	b := NewPicture(2, 2)
	require.Equal(t, a.Digest(), b.Digest())

	a.Set(0, 0, RGB(1, 2, 3))
	require.NotEqual(t, a.Digest(), b.Digest())

	b.Set(0, 0, RGB(1, 2, 3))
	require.Equal(t, a.Digest(), b.Digest())
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Clear()
	r.Fill(RGB(1, 2, 3))
	r.BeginShape()
	r.Vertex(1, 2)
	r.Vertex(3, 4)
	r.EndShape()
	r.Text("hi", 1, 1)
	r.Picture(NewPicture(3, 2), 5, 6, 2)

	require.Equal(t, 2, r.Count("vertex"))
	require.Equal(t, "fill", r.Ops[1].Name)
	require.Equal(t, RGB(1, 2, 3), *r.Ops[1].Color)
	require.Equal(t, "hi", r.Ops[6].Text)
	require.Equal(t, []float64{5, 6, 3, 2, 2}, r.Ops[7].Args)

	r.Reset()
	require.Empty(t, r.Ops)
}

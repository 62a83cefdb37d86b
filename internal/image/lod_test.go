package image

import (
	goimage "image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) goimage.Image {
	return goimage.NewRGBA(goimage.Rect(0, 0, w, h))
}

func fullSet() *Set {
	s := &Set{Full: solid(2000, 1500)}
	s.BuildVariants()
	return s
}

func TestSelectOptimizedByFootprint(t *testing.T) {
	s := fullSet()
	require.NotNil(t, s.Small)
	require.NotNil(t, s.Large)

	// A 100x100 anchor: zoom 1 and zoom 2 keep the small variant, zoom 6
	// pushes it to the large one.
	assert.Equal(t, s.Small, s.Select(ModeOptimized, 100))
	assert.Equal(t, s.Small, s.Select(ModeOptimized, 200))
	assert.Equal(t, s.Large, s.Select(ModeOptimized, 600))
	assert.Equal(t, s.Full, s.Select(ModeOptimized, 1600))
}

func TestSelectHighAlwaysFull(t *testing.T) {
	s := fullSet()
	for _, fp := range []float64{10, 100, 600, 5000} {
		assert.Equal(t, s.Full, s.Select(ModeHigh, fp))
	}
}

func TestSelectFallsBackToFull(t *testing.T) {
	// Source smaller than both caps: no variants generated.
	s := &Set{Full: solid(300, 200)}
	s.BuildVariants()

	assert.Nil(t, s.Small)
	assert.Nil(t, s.Large)
	assert.Equal(t, s.Full, s.Select(ModeOptimized, 100))
}

func TestSelectNilSet(t *testing.T) {
	var s *Set
	assert.Nil(t, s.Select(ModeOptimized, 100))
}

func TestBuildVariantsDimensions(t *testing.T) {
	s := &Set{Full: solid(2048, 1024)}
	s.BuildVariants()

	require.NotNil(t, s.Large)
	assert.Equal(t, 1024, s.Large.Bounds().Dx())
	assert.Equal(t, 512, s.Large.Bounds().Dy())

	require.NotNil(t, s.Small)
	assert.Equal(t, 512, s.Small.Bounds().Dx())
	assert.Equal(t, 256, s.Small.Bounds().Dy())
}

func TestBuildVariantsPortrait(t *testing.T) {
	s := &Set{Full: solid(600, 1800)}
	s.BuildVariants()

	require.NotNil(t, s.Small)
	assert.Equal(t, 512, s.Small.Bounds().Dy())
	assert.Equal(t, 170, s.Small.Bounds().Dx())
}

func TestBuildVariantsIdempotent(t *testing.T) {
	s := fullSet()
	small := s.Small
	s.BuildVariants()
	assert.Same(t, small, s.Small)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeHigh, ParseMode("high"))
	assert.Equal(t, ModeOptimized, ParseMode("optimized"))
	assert.Equal(t, ModeOptimized, ParseMode(""))
	assert.Equal(t, ModeOptimized, ParseMode("bogus"))
}

func TestAspectRatio(t *testing.T) {
	s := &Set{Full: solid(400, 200)}
	assert.InDelta(t, 2.0, s.AspectRatio(), 1e-9)
	assert.InDelta(t, 1.0, (&Set{}).AspectRatio(), 1e-9)
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("pics/board.png"))
	assert.True(t, IsSupportedFormat("a.JPG"))
	assert.True(t, IsSupportedFormat("a.webp"))
	assert.False(t, IsSupportedFormat("notes.txt"))
	assert.False(t, IsSupportedFormat("archive"))
}

func TestPlaceholderSize(t *testing.T) {
	p := Placeholder(64, 48)
	assert.Equal(t, 64, p.Bounds().Dx())
	assert.Equal(t, 48, p.Bounds().Dy())

	// Tiny requests are bumped to a drawable minimum.
	p = Placeholder(0, 0)
	assert.GreaterOrEqual(t, p.Bounds().Dx(), 8)
}

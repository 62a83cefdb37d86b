package board

import (
	goimage "image"
	"testing"

	yimage "yarnboard/internal/image"
)

// decodedSet fakes the result of the image pipeline for a w-by-h source.
func decodedSet(t *testing.T, w, h int) *yimage.Set {
	t.Helper()
	s := &yimage.Set{Full: goimage.NewRGBA(goimage.Rect(0, 0, w, h))}
	s.BuildVariants()
	return s
}

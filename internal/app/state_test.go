package app

import (
	"bytes"
	goimage "image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yarnboard/internal/interact"
	"yarnboard/internal/store"
	"yarnboard/pkg/geometry"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestState() *State {
	return NewState(store.NewMemStore())
}

// tickUntil pumps the frame loop until cond holds.
func tickUntil(t *testing.T, s *State, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.Tick(1.0 / 60)
		return cond()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPlaceImagesResolvesAndCorrectsAspect(t *testing.T) {
	s := newTestState()
	s.PlaceImages([]PickedImage{{Name: "wide", Data: pngBytes(t, 200, 100)}})

	require.Len(t, s.Board().Anchors(), 1)
	a := s.Board().Anchors()[0]
	assert.Equal(t, "wide", a.Name)

	tickUntil(t, s, func() bool { return a.Images != nil })
	assert.InDelta(t, 2.0, a.AspectRatio, 1e-9)
	assert.InDelta(t, a.Rect.Width/2, a.Rect.Height, 1e-9)
	assert.False(t, a.Missing)
}

func TestPlaceImagesWithoutSourceMarksMissing(t *testing.T) {
	s := newTestState()
	var statuses []string
	s.On(EventStatus, func(data interface{}) {
		statuses = append(statuses, data.(string))
	})

	s.PlaceImages([]PickedImage{{Name: "ghost"}})
	require.Len(t, s.Board().Anchors(), 1)
	assert.True(t, s.Board().Anchors()[0].Missing)
	assert.NotEmpty(t, statuses)
}

func TestResolveImageFailureMarksMissing(t *testing.T) {
	s := newTestState()
	a := s.Board().AddAnchor("gone", "/nonexistent/image.png")
	s.ResolveImage(a.ID, a.Path)

	tickUntil(t, s, func() bool { return a.Missing })
	assert.Nil(t, a.Images)
}

func TestStaleResultAfterDeletionIsDropped(t *testing.T) {
	s := newTestState()
	a := s.Board().AddAnchor("doomed", "")
	s.AttachImageData(a.ID, pngBytes(t, 64, 64))

	// Let the worker finish, then delete before the frame loop applies it.
	require.Eventually(t, func() bool { return len(s.results) > 0 }, 2*time.Second, 5*time.Millisecond)
	s.Board().DeleteAnchor(a.ID)

	s.Tick(1.0 / 60)
	assert.Empty(t, s.Board().Anchors())
	assert.Nil(t, a.Images)
}

func TestLatestGenerationWins(t *testing.T) {
	s := newTestState()
	a := s.Board().AddAnchor("twice", "")
	s.AttachImageData(a.ID, pngBytes(t, 100, 100))
	s.AttachImageData(a.ID, pngBytes(t, 300, 150))

	tickUntil(t, s, func() bool {
		return a.Images != nil && a.Images.Width() == 300
	})

	// Even if the first result trails in afterwards, it stays dropped.
	time.Sleep(50 * time.Millisecond)
	s.Tick(1.0 / 60)
	assert.Equal(t, 300, a.Images.Width())
	assert.InDelta(t, 2.0, a.AspectRatio, 1e-9)
}

func TestTickClampsLargeDt(t *testing.T) {
	s := newTestState()
	a1 := s.Board().AddAnchor("a", "")
	a2 := s.Board().AddAnchor("b", "")
	_, err := s.Board().Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s.Tick(10.0)
	}
	for _, r := range s.Board().Ropes() {
		for _, p := range r.Sim.Points() {
			require.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
			require.Less(t, math.Abs(p.Y), 2000.0)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestState()
	a1 := s.Board().AddAnchor("a", "")
	a2 := s.Board().AddAnchor("b", "")
	_, err := s.Board().Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	var loaded, saved bool
	s.On(EventBoardSaved, func(interface{}) { saved = true })
	s.On(EventBoardLoaded, func(interface{}) { loaded = true })

	path := filepath.Join(t.TempDir(), "case.yb")
	require.NoError(t, s.Save(path))
	assert.True(t, saved)
	assert.Equal(t, path, s.BoardPath)
	assert.False(t, s.Modified)

	s.Board().AddAnchor("extra", "")
	require.NoError(t, s.Load(path))
	assert.True(t, loaded)
	assert.Len(t, s.Board().Anchors(), 2)
	assert.Len(t, s.Board().Ropes(), 1)
}

func TestLoadFailureKeepsBoard(t *testing.T) {
	s := newTestState()
	s.Board().AddAnchor("keep", "")

	err := s.Load(filepath.Join(t.TempDir(), "missing.yb"))
	require.Error(t, err)
	assert.Len(t, s.Board().Anchors(), 1)
}

func TestAutosaveRestore(t *testing.T) {
	mem := store.NewMemStore()

	s := NewState(mem)
	s.Board().AddAnchor("persisted", "")
	s.PlaceImages([]PickedImage{{Name: "second"}})

	s2 := NewState(mem)
	require.True(t, s2.RestoreAutosave())
	assert.Len(t, s2.Board().Anchors(), 2)

	s3 := NewState(store.NewMemStore())
	assert.False(t, s3.RestoreAutosave())
}

func TestSetModeEmitsEvent(t *testing.T) {
	s := newTestState()
	var got interact.Mode
	s.On(EventModeChanged, func(data interface{}) {
		got = data.(interact.Mode)
	})
	s.SetMode(interact.ModeConnect)
	assert.Equal(t, interact.ModeConnect, got)
	assert.Equal(t, interact.ModeConnect, s.Machine().Mode())
}

func TestConcurrentTickAndPointerInput(t *testing.T) {
	s := newTestState()
	a1 := s.Board().AddAnchor("a", "")
	a2 := s.Board().AddAnchor("b", "")
	_, err := s.Board().Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			s.Tick(1.0 / 60)
		}
	}()

	// Drag a1 repeatedly the way the widget does: one engine lock per
	// pointer event, racing against the ticking goroutine.
	for i := 0; i < 100; i++ {
		s.LockEngine()
		pin := a1.Pin()
		s.Machine().PointerDown(pin)
		s.UnlockEngine()

		s.LockEngine()
		s.Machine().PointerMove(pin.Add(geometry.Point2D{X: 5, Y: 3}))
		s.UnlockEngine()

		s.LockEngine()
		s.Machine().PointerUp()
		s.UnlockEngine()
	}
	<-done

	require.Len(t, s.Board().Ropes(), 1)
	for _, p := range s.Board().Ropes()[0].Sim.Points() {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}
	assert.InDelta(t, 120+5*100, a1.Rect.X, 1e-6)
}

func TestCommitAutosaves(t *testing.T) {
	mem := store.NewMemStore()
	s := NewState(mem)
	s.Board().AddAnchor("a", "")

	// Drag through the machine so the commit path runs.
	a := s.Board().Anchors()[0]
	s.Machine().PointerDown(a.Pin())
	s.Machine().PointerMove(a.Pin().Add(geometry.Point2D{X: 50, Y: 50}))
	s.Machine().PointerUp()

	_, ok := mem.Get("autosave")
	assert.True(t, ok)
	assert.True(t, s.Modified)
}

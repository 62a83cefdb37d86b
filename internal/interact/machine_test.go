package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yarnboard/internal/board"
	"yarnboard/pkg/geometry"
)

// twoAnchorBoard places two anchors at the deterministic cascade positions:
// a1 at (120,90) and a2 at (160,120), both 180x135.
func twoAnchorBoard(t *testing.T) (*board.Board, *board.Anchor, *board.Anchor) {
	t.Helper()
	b := board.New()
	a1 := b.AddAnchor("alpha", "alpha.png")
	a2 := b.AddAnchor("beta", "beta.png")
	return b, a1, a2
}

type spy struct {
	commits  int
	statuses []string
}

func (s *spy) attach(m *Machine) {
	m.OnCommit = func() { s.commits++ }
	m.OnStatus = func(msg string) { s.statuses = append(s.statuses, msg) }
}

func TestConnectTwoAnchors(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	m := NewMachine(b)
	m.SetMode(ModeConnect)
	var s spy
	s.attach(m)

	m.PointerDown(a1.Pin())
	assert.Equal(t, a1.ID, m.ConnectPending())
	require.NotNil(t, m.Preview())

	m.PointerDown(a2.Pin())
	assert.Empty(t, m.ConnectPending())
	assert.Nil(t, m.Preview())
	require.Len(t, b.Ropes(), 1)
	assert.Equal(t, 1, s.commits)
}

func TestConnectDuplicateIsStatusNoOp(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	m := NewMachine(b)
	m.SetMode(ModeConnect)
	var s spy
	s.attach(m)

	m.PointerDown(a1.Pin())
	m.PointerDown(a2.Pin())
	require.Len(t, b.Ropes(), 1)

	// Second attempt, in the other order.
	m.PointerDown(a2.Pin())
	m.PointerDown(a1.Pin())
	assert.Len(t, b.Ropes(), 1)
	assert.Empty(t, m.ConnectPending())
	require.NotEmpty(t, s.statuses)
	assert.Contains(t, s.statuses[len(s.statuses)-1], "already connected")
	assert.Equal(t, 1, s.commits)
}

func TestConnectSameAnchorStaysPending(t *testing.T) {
	b, a1, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	m.SetMode(ModeConnect)

	m.PointerDown(a1.Pin())
	m.PointerDown(a1.Pin())
	assert.Equal(t, a1.ID, m.ConnectPending())
	assert.Empty(t, b.Ropes())
}

func TestCancelConnectDiscardsPreview(t *testing.T) {
	b, a1, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	m.SetMode(ModeConnect)

	m.PointerDown(a1.Pin())
	require.NotNil(t, m.Preview())
	m.CancelConnect()
	assert.Empty(t, m.ConnectPending())
	assert.Nil(t, m.Preview())
}

func TestSwitchingModeCancelsPending(t *testing.T) {
	b, a1, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	m.SetMode(ModeConnect)

	m.PointerDown(a1.Pin())
	m.SetMode(ModeSelect)
	assert.Empty(t, m.ConnectPending())
	assert.Nil(t, m.Preview())
}

func TestStepPreviewSurvivesPendingAnchorDeletion(t *testing.T) {
	b, a1, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	m.SetMode(ModeConnect)

	m.PointerDown(a1.Pin())
	m.PointerMove(geometry.Point2D{X: 400, Y: 400})
	assert.True(t, m.StepPreview(1.0/60))

	b.DeleteAnchor(a1.ID)
	m.StepPreview(1.0 / 60)
	assert.Empty(t, m.ConnectPending())
	assert.Nil(t, m.Preview())
}

func TestDragIsOffsetRelative(t *testing.T) {
	b, a1, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	var s spy
	s.attach(m)

	// Grab the pin slightly off-center so the offset matters.
	grab := geometry.Point2D{X: a1.Pin().X + 2, Y: a1.Pin().Y + 2}
	m.PointerDown(grab)
	assert.True(t, m.Dragging())
	assert.Equal(t, a1.ID, m.SelectedAnchor())

	m.PointerMove(geometry.Point2D{X: grab.X + 100, Y: grab.Y + 100})
	assert.InDelta(t, 220, a1.Rect.X, 1e-9)
	assert.InDelta(t, 190, a1.Rect.Y, 1e-9)

	assert.Equal(t, 0, s.commits)
	m.PointerUp()
	assert.Equal(t, 1, s.commits)
	assert.False(t, m.Dragging())
}

func TestResizeFromCornerHandle(t *testing.T) {
	b, a1, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	var s spy
	s.attach(m)

	// Select the anchor by pressing its body, away from pins and handles.
	m.PointerDown(geometry.Point2D{X: 150, Y: 200})
	require.Equal(t, a1.ID, m.SelectedAnchor())
	m.PointerUp()

	// Grab the bottom-right handle and pull outward.
	br := a1.Rect.CornerPoint(geometry.BottomRight)
	m.PointerDown(br)
	require.True(t, m.Dragging())
	m.PointerMove(geometry.Point2D{X: br.X + 120, Y: br.Y + 105})

	assert.InDelta(t, 120, a1.Rect.X, 1e-9)
	assert.InDelta(t, 90, a1.Rect.Y, 1e-9)
	assert.InDelta(t, a1.AspectRatio, a1.Rect.Width/a1.Rect.Height, 0.02)
	assert.Greater(t, a1.Rect.Width, 180.0)

	m.PointerUp()
	assert.Equal(t, 1, s.commits)
}

func TestDeleteModeCascadesFromPin(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	_, err := b.Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	m := NewMachine(b)
	m.SetMode(ModeDelete)
	var s spy
	s.attach(m)

	m.PointerDown(a1.Pin())
	assert.Len(t, b.Anchors(), 1)
	assert.Empty(t, b.Ropes())
	assert.Equal(t, 1, s.commits)
}

func TestDeleteModeRemovesRopeWithinThreshold(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	_, err := b.Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	m := NewMachine(b)
	m.SetMode(ModeDelete)
	var s spy
	s.attach(m)

	// The fresh chain runs straight between the pins; press its midpoint.
	mid := geometry.Point2D{
		X: (a1.Pin().X + a2.Pin().X) / 2,
		Y: (a1.Pin().Y + a2.Pin().Y) / 2,
	}
	m.PointerDown(mid)
	assert.Empty(t, b.Ropes())
	assert.Len(t, b.Anchors(), 2)
	assert.Equal(t, 1, s.commits)
}

func TestSelectModePicksRope(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	r, err := b.Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	m := NewMachine(b)
	mid := geometry.Point2D{
		X: (a1.Pin().X + a2.Pin().X) / 2,
		Y: (a1.Pin().Y + a2.Pin().Y) / 2,
	}
	m.PointerDown(mid)
	assert.Equal(t, r.ID, m.SelectedRope())
	assert.Empty(t, m.SelectedAnchor())
}

func TestEmptySpacePans(t *testing.T) {
	b, _, _ := twoAnchorBoard(t)
	m := NewMachine(b)
	var s spy
	s.attach(m)

	m.PointerDown(geometry.Point2D{X: 1000, Y: 800})
	m.PointerMove(geometry.Point2D{X: 1020, Y: 790})
	assert.InDelta(t, 20, b.Viewport.Pan.X, 1e-9)
	assert.InDelta(t, -10, b.Viewport.Pan.Y, 1e-9)

	m.PointerUp()
	assert.Equal(t, 1, s.commits)
}

func TestLockedBoardAllowsOnlyPanAndSelection(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	_, err := b.Connect(a1.ID, a2.ID)
	require.NoError(t, err)
	b.Locked = true

	m := NewMachine(b)

	// Delete mode is inert while locked.
	m.SetMode(ModeDelete)
	m.PointerDown(a1.Pin())
	assert.Len(t, b.Anchors(), 2)
	assert.Len(t, b.Ropes(), 1)

	// Select mode still selects, but no drag starts.
	m.SetMode(ModeSelect)
	m.PointerDown(a1.Pin())
	assert.Equal(t, a1.ID, m.SelectedAnchor())
	assert.False(t, m.Dragging())

	// Panning still works.
	m.PointerDown(geometry.Point2D{X: 1000, Y: 800})
	m.PointerMove(geometry.Point2D{X: 1010, Y: 800})
	assert.InDelta(t, 10, b.Viewport.Pan.X, 1e-9)
	m.PointerUp()
}

func TestPinBeatsBodyOnOverlap(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	m := NewMachine(b)

	// a2's pin sits inside a1's rectangle; the pin must win and start a
	// drag of a2, not a body selection of a1.
	require.True(t, a1.Rect.Contains(a2.Pin()))
	m.PointerDown(a2.Pin())
	assert.Equal(t, a2.ID, m.SelectedAnchor())
	assert.True(t, m.Dragging())
}

func TestDeleteClearsStaleSelection(t *testing.T) {
	b, a1, a2 := twoAnchorBoard(t)
	r, err := b.Connect(a1.ID, a2.ID)
	require.NoError(t, err)

	m := NewMachine(b)
	m.Select(a1.ID)
	m.selectedRopeID = r.ID

	m.SetMode(ModeDelete)
	m.PointerDown(a1.Pin())
	assert.Empty(t, m.SelectedAnchor())
	assert.Empty(t, m.SelectedRope())
}

// Package interact interprets pointer input against the current mode and
// turns it into board mutations. It knows nothing about any UI toolkit:
// coordinates come in as client pixels, results go out through callbacks.
package interact

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"yarnboard/internal/board"
	"yarnboard/internal/rope"
	"yarnboard/pkg/geometry"
)

// Mode is the active interaction tool.
type Mode int

const (
	ModeSelect Mode = iota
	ModeConnect
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeConnect:
		return "connect"
	case ModeDelete:
		return "delete"
	default:
		return "select"
	}
}

// Hit-testing sizes, in screen pixels unless noted.
const (
	handleHitPx   = 10.0
	pinHitPx      = 12.0
	ropeHitBasePx = 8.0 // divided by zoom to get the world-space threshold
)

// Anchor size bounds fed to the resize solver, in world units.
const (
	minAnchorW = 60.0
	minAnchorH = 45.0
	maxAnchorW = 4000.0
	maxAnchorH = 4000.0
)

// gesture is the tagged union of in-flight pointer operations. At most one
// is active at a time.
type gesture interface {
	isGesture()
}

type dragGesture struct {
	anchorID string
	// offset from the anchor's top-left to the grab point, in world units,
	// so the anchor tracks the pointer without jumping.
	offset geometry.Point2D
	moved  bool
}

type resizeGesture struct {
	anchorID string
	corner   geometry.Corner
	fixed    geometry.Point2D
	aspect   float64
	moved    bool
}

type panGesture struct {
	lastClient geometry.Point2D
	moved      bool
}

func (dragGesture) isGesture()   {}
func (resizeGesture) isGesture() {}
func (panGesture) isGesture()    {}

// Machine is the interaction state machine. It is not safe for concurrent
// use on its own; callers serialize it against the frame tick with the
// application state's engine lock.
type Machine struct {
	b *board.Board

	mode    Mode
	gesture gesture

	// Connect mode state: the first anchor picked, plus an ephemeral
	// preview rope from its pin to the live pointer. The preview is never
	// persisted.
	pendingID  string
	preview    *rope.Sim
	previewEnd geometry.Point2D

	selectedAnchorID string
	selectedRopeID   string

	// OnCommit fires after a gesture or action changed persistent state.
	OnCommit func()
	// OnStatus carries one-line user-facing messages.
	OnStatus func(msg string)
	// OnWake fires when something visual changed outside a commit, so the
	// canvas schedules a redraw.
	OnWake func()
}

// NewMachine builds a state machine over the given board.
func NewMachine(b *board.Board) *Machine {
	return &Machine{b: b, mode: ModeSelect}
}

// Mode returns the active tool.
func (m *Machine) Mode() Mode { return m.mode }

// SetBoard repoints the machine at a freshly loaded board, dropping every
// piece of transient interaction state.
func (m *Machine) SetBoard(b *board.Board) {
	m.b = b
	m.gesture = nil
	m.pendingID = ""
	m.preview = nil
	m.selectedAnchorID = ""
	m.selectedRopeID = ""
}

// SetMode switches tools. Any in-flight gesture or pending connection is
// abandoned.
func (m *Machine) SetMode(mode Mode) {
	if mode == m.mode {
		return
	}
	m.gesture = nil
	m.CancelConnect()
	m.mode = mode
	m.wake()
}

// SelectedAnchor returns the selected anchor id, or "".
func (m *Machine) SelectedAnchor() string { return m.selectedAnchorID }

// SelectedRope returns the selected rope id, or "".
func (m *Machine) SelectedRope() string { return m.selectedRopeID }

// Select sets the anchor selection directly, for keyboard navigation.
func (m *Machine) Select(anchorID string) {
	m.selectedAnchorID = anchorID
	m.selectedRopeID = ""
	m.wake()
}

// ClearSelection drops both selections.
func (m *Machine) ClearSelection() {
	m.selectedAnchorID = ""
	m.selectedRopeID = ""
}

// ConnectPending returns the anchor id a connection started from, or "".
func (m *Machine) ConnectPending() string { return m.pendingID }

// CancelConnect abandons a pending connection and its preview.
func (m *Machine) CancelConnect() {
	if m.pendingID == "" {
		return
	}
	m.pendingID = ""
	m.preview = nil
	m.wake()
}

// Preview returns the connect preview chain, or nil when no connection is
// pending.
func (m *Machine) Preview() *rope.Sim { return m.preview }

// StepPreview advances the preview rope toward the live pointer. Called
// from the frame tick. Reports whether the preview moved.
func (m *Machine) StepPreview(dt float64) bool {
	if m.preview == nil {
		return false
	}
	a := m.b.Anchor(m.pendingID)
	if a == nil {
		// Pending anchor deleted out from under us.
		m.CancelConnect()
		return true
	}
	pin := a.Pin()
	return m.preview.Step(dt, r2.Vec{X: pin.X, Y: pin.Y}, r2.Vec{X: m.previewEnd.X, Y: m.previewEnd.Y})
}

// Dragging reports whether a drag or resize gesture is in flight.
func (m *Machine) Dragging() bool {
	switch m.gesture.(type) {
	case dragGesture, resizeGesture:
		return true
	}
	return false
}

// PointerDown dispatches a press at the given client position. Priority:
// resize handle, then pin, then rope, then anchor body, then pan.
func (m *Machine) PointerDown(client geometry.Point2D) {
	world := m.b.Viewport.ScreenToWorld(client)

	if !m.b.Locked && m.mode == ModeSelect {
		if corner, ok := m.hitHandle(client); ok {
			a := m.b.Anchor(m.selectedAnchorID)
			m.gesture = resizeGesture{
				anchorID: a.ID,
				corner:   corner,
				fixed:    a.Rect.CornerPoint(corner.Opposite()),
				aspect:   a.AspectRatio,
			}
			return
		}
	}

	if a := m.hitPin(client); a != nil {
		m.pressPin(a, world)
		return
	}

	if r := m.hitRope(world); r != nil {
		m.pressRope(r)
		return
	}

	if a := m.hitBody(world); a != nil {
		m.pressBody(a)
		return
	}

	m.gesture = panGesture{lastClient: client}
}

// pressPin handles a press on an anchor's connection pin.
func (m *Machine) pressPin(a *board.Anchor, world geometry.Point2D) {
	switch m.mode {
	case ModeDelete:
		if m.b.Locked {
			return
		}
		m.deleteAnchor(a)
	case ModeConnect:
		if m.b.Locked {
			return
		}
		m.pickConnect(a, world)
	default:
		m.selectedAnchorID = a.ID
		m.selectedRopeID = ""
		if m.b.Locked {
			m.wake()
			return
		}
		m.gesture = dragGesture{
			anchorID: a.ID,
			offset:   world.Sub(geometry.Point2D{X: a.Rect.X, Y: a.Rect.Y}),
		}
	}
}

// pickConnect advances the two-click connect flow.
func (m *Machine) pickConnect(a *board.Anchor, world geometry.Point2D) {
	if m.pendingID == "" {
		m.pendingID = a.ID
		pin := a.Pin()
		m.previewEnd = world
		m.preview = rope.New(r2.Vec{X: pin.X, Y: pin.Y}, r2.Vec{X: world.X, Y: world.Y})
		m.status(fmt.Sprintf("connecting from %q, pick a second anchor", a.Name))
		return
	}
	if a.ID == m.pendingID {
		// Stays pending; picking the same anchor twice is not a cancel.
		return
	}
	from := m.pendingID
	m.pendingID = ""
	m.preview = nil
	if _, err := m.b.Connect(from, a.ID); err != nil {
		m.status(err.Error())
		m.wake()
		return
	}
	m.commit()
}

// pressRope handles a press that landed on a rope chain.
func (m *Machine) pressRope(r *board.Rope) {
	if m.mode == ModeDelete {
		if m.b.Locked {
			return
		}
		m.b.DeleteRope(r.ID)
		if m.selectedRopeID == r.ID {
			m.selectedRopeID = ""
		}
		m.commit()
		return
	}
	m.selectedRopeID = r.ID
	m.selectedAnchorID = ""
	m.wake()
}

// pressBody handles a press inside an anchor rectangle, below the pin.
func (m *Machine) pressBody(a *board.Anchor) {
	if m.mode == ModeDelete && !m.b.Locked {
		m.deleteAnchor(a)
		return
	}
	m.selectedAnchorID = a.ID
	m.selectedRopeID = ""
	m.wake()
}

func (m *Machine) deleteAnchor(a *board.Anchor) {
	cascaded := m.b.DeleteAnchor(a.ID)
	if m.selectedAnchorID == a.ID {
		m.selectedAnchorID = ""
	}
	for _, id := range cascaded {
		if m.selectedRopeID == id {
			m.selectedRopeID = ""
		}
	}
	if m.pendingID == a.ID {
		m.CancelConnect()
	}
	m.commit()
}

// PointerMove advances the active gesture, or the connect preview endpoint.
func (m *Machine) PointerMove(client geometry.Point2D) {
	world := m.b.Viewport.ScreenToWorld(client)

	if m.pendingID != "" {
		m.previewEnd = world
		m.wake()
	}

	switch g := m.gesture.(type) {
	case dragGesture:
		pos := world.Sub(g.offset)
		m.b.MoveAnchor(g.anchorID, pos.X, pos.Y)
		g.moved = true
		m.gesture = g
		m.wake()
	case resizeGesture:
		r := geometry.ResizeFromFixedCorner(g.fixed, world, g.corner, g.aspect,
			minAnchorW, minAnchorH, maxAnchorW, maxAnchorH)
		m.b.SetAnchorRect(g.anchorID, r)
		g.moved = true
		m.gesture = g
		m.wake()
	case panGesture:
		delta := client.Sub(g.lastClient)
		m.b.SetPan(m.b.Viewport.Pan.X+delta.X, m.b.Viewport.Pan.Y+delta.Y)
		g.lastClient = client
		g.moved = true
		m.gesture = g
		m.wake()
	}
}

// PointerUp ends the active gesture. A gesture that changed the board
// commits exactly once, here.
func (m *Machine) PointerUp() {
	g := m.gesture
	m.gesture = nil
	switch g := g.(type) {
	case dragGesture:
		if g.moved {
			m.commit()
		}
	case resizeGesture:
		if g.moved {
			m.commit()
		}
	case panGesture:
		if g.moved {
			m.commit()
		}
	}
}

// hitHandle tests the selected anchor's corner handles in screen space.
func (m *Machine) hitHandle(client geometry.Point2D) (geometry.Corner, bool) {
	a := m.b.Anchor(m.selectedAnchorID)
	if a == nil {
		return 0, false
	}
	for _, c := range []geometry.Corner{
		geometry.TopLeft, geometry.TopRight, geometry.BottomLeft, geometry.BottomRight,
	} {
		p := m.b.Viewport.WorldToScreen(a.Rect.CornerPoint(c))
		if math.Abs(client.X-p.X) <= handleHitPx && math.Abs(client.Y-p.Y) <= handleHitPx {
			return c, true
		}
	}
	return 0, false
}

// hitPin tests every anchor pin in screen space, topmost first.
func (m *Machine) hitPin(client geometry.Point2D) *board.Anchor {
	anchors := m.b.Anchors()
	for i := len(anchors) - 1; i >= 0; i-- {
		p := m.b.Viewport.WorldToScreen(anchors[i].Pin())
		if client.DistanceSq(p) <= pinHitPx*pinHitPx {
			return anchors[i]
		}
	}
	return nil
}

// hitRope returns the rope nearest to the world point within the zoom-scaled
// threshold, or nil.
func (m *Machine) hitRope(world geometry.Point2D) *board.Rope {
	zoom := m.b.Viewport.Zoom
	if zoom <= 0 {
		return nil
	}
	threshold := ropeHitBasePx / zoom

	var best *board.Rope
	bestDist := threshold
	for _, r := range m.b.Ropes() {
		pts := r.Sim.Points()
		for i := 0; i+1 < len(pts); i++ {
			a := geometry.Point2D{X: pts[i].X, Y: pts[i].Y}
			b := geometry.Point2D{X: pts[i+1].X, Y: pts[i+1].Y}
			d := geometry.PointSegmentDistance(world, a, b)
			if d <= bestDist {
				bestDist = d
				best = r
			}
		}
	}
	return best
}

// hitBody tests anchor rectangles in world space, topmost first.
func (m *Machine) hitBody(world geometry.Point2D) *board.Anchor {
	anchors := m.b.Anchors()
	for i := len(anchors) - 1; i >= 0; i-- {
		if anchors[i].Rect.Contains(world) {
			return anchors[i]
		}
	}
	return nil
}

func (m *Machine) commit() {
	if m.OnCommit != nil {
		m.OnCommit()
	}
}

func (m *Machine) status(msg string) {
	if m.OnStatus != nil {
		m.OnStatus(msg)
	}
}

func (m *Machine) wake() {
	if m.OnWake != nil {
		m.OnWake()
	}
}

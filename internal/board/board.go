// Package board owns the link chart: anchors, ropes, the color key, and the
// viewport. All mutation goes through Board methods so the invariants hold:
// no duplicate unordered rope pairs, no dangling anchor references, never an
// empty color key.
package board

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	yimage "yarnboard/internal/image"
	"yarnboard/internal/rope"
	"yarnboard/pkg/geometry"
)

// Zoom bounds for the viewport.
const (
	MinZoom = 0.25
	MaxZoom = 2.0
)

// Placement cascade for newly imported anchors.
const (
	placeStartX = 120.0
	placeStartY = 90.0
	placeStepX  = 40.0
	placeStepY  = 30.0
	placeWrapX  = 1000.0
	placeRowY   = 220.0

	// DefaultAnchorWidth is the provisional width of a new anchor before its
	// image has decoded.
	DefaultAnchorWidth = 180.0
	// DefaultAspectRatio stands in until the decoded image corrects it.
	DefaultAspectRatio = 4.0 / 3.0
)

// An anchor jump beyond this distance in one frame snaps the rope instead of
// letting the solver whip the chain across the board.
const resetJumpDistance = 400.0

// Invariant-guard rejections. These are expected, user-triggered conditions;
// callers surface them as a status line, not as failures.
var (
	ErrSelfRope      = errors.New("cannot connect an anchor to itself")
	ErrDuplicateRope = errors.New("these anchors are already connected")
	ErrLastColorKey  = errors.New("the last color key item cannot be removed")
	ErrNotFound      = errors.New("no such item")
)

// Anchor is a placed image with identity and a world-space rectangle.
type Anchor struct {
	ID          string
	Name        string
	Rect        geometry.Rect
	AspectRatio float64
	Path        string
	Missing     bool

	// Images holds the decoded LOD variants. Runtime only; rebuilt after
	// load, never serialized.
	Images *yimage.Set
}

// Pin returns the rope attachment point: the middle of the anchor's top edge.
func (a *Anchor) Pin() geometry.Point2D {
	return geometry.Point2D{X: a.Rect.X + a.Rect.Width/2, Y: a.Rect.Y}
}

// pinVec is the pin as a simulation vector.
func (a *Anchor) pinVec() r2.Vec {
	p := a.Pin()
	return r2.Vec{X: p.X, Y: p.Y}
}

// Rope links two anchors. The pair is unordered: a rope a-b is the same rope
// as b-a.
type Rope struct {
	ID      string
	AID     string
	BID     string
	ColorID string

	// Sim is the attached yarn simulation. Runtime only.
	Sim *rope.Sim

	// Last endpoint positions fed to the simulation, used to detect jumps
	// large enough to warrant a reset.
	lastA r2.Vec
	lastB r2.Vec
}

// HasAnchor reports whether the rope touches the given anchor.
func (r *Rope) HasAnchor(id string) bool {
	return r.AID == id || r.BID == id
}

// ColorKey is one entry of the board legend.
type ColorKey struct {
	ID    string
	Name  string
	Color string // #rrggbb
}

// Board is the mutable model behind one link chart.
type Board struct {
	anchors    []*Anchor
	anchorByID map[string]*Anchor
	ropes      []*Rope
	ropeByID   map[string]*Rope

	// incident maps anchor id to the ids of ropes touching it, maintained
	// incrementally so cascade delete is O(incident ropes).
	incident map[string][]string

	keys []ColorKey

	Viewport      geometry.Viewport
	Locked        bool
	ShowLegend    bool
	ActiveColorID string
	RenderMode    yimage.Mode

	// Placement cursor for the import cascade.
	placeX, placeY float64
}

// New creates an empty board with the default color key.
func New() *Board {
	b := &Board{
		anchorByID: make(map[string]*Anchor),
		ropeByID:   make(map[string]*Rope),
		incident:   make(map[string][]string),
		Viewport:   geometry.NewViewport(),
		placeX:     placeStartX,
		placeY:     placeStartY,
	}
	k := b.AddColorKey("Lead", "#d23939")
	b.ActiveColorID = k.ID
	return b
}

// Anchors returns the anchors in placement order.
func (b *Board) Anchors() []*Anchor {
	return b.anchors
}

// Anchor returns the anchor with the given id, or nil.
func (b *Board) Anchor(id string) *Anchor {
	return b.anchorByID[id]
}

// Ropes returns all ropes.
func (b *Board) Ropes() []*Rope {
	return b.ropes
}

// RopeByID returns the rope with the given id, or nil.
func (b *Board) RopeByID(id string) *Rope {
	return b.ropeByID[id]
}

// AddAnchor places a new anchor at the next cascade position with a
// provisional size; the image pipeline corrects size and aspect once the
// decode finishes.
func (b *Board) AddAnchor(name, path string) *Anchor {
	w := DefaultAnchorWidth
	h := w / DefaultAspectRatio

	a := &Anchor{
		ID:          uuid.New().String(),
		Name:        name,
		Path:        path,
		AspectRatio: DefaultAspectRatio,
		Rect:        geometry.NewRect(b.placeX, b.placeY, w, h),
	}
	b.advancePlacement()

	b.anchors = append(b.anchors, a)
	b.anchorByID[a.ID] = a
	return a
}

// advancePlacement moves the cascade cursor right, wrapping to a new row
// past the width threshold.
func (b *Board) advancePlacement() {
	b.placeX += placeStepX
	b.placeY += placeStepY
	if b.placeX+DefaultAnchorWidth > placeWrapX {
		b.placeX = placeStartX
		b.placeY += placeRowY - placeStepY
	}
}

// restoreAnchor re-adds a persisted anchor record verbatim.
func (b *Board) restoreAnchor(a *Anchor) {
	b.anchors = append(b.anchors, a)
	b.anchorByID[a.ID] = a
}

// ApplyImage attaches decoded image variants to an anchor and corrects its
// aspect ratio, keeping the current width and position. A stale id is a
// silent no-op: the anchor may have been deleted while decoding ran.
func (b *Board) ApplyImage(anchorID string, set *yimage.Set) {
	a := b.anchorByID[anchorID]
	if a == nil || set == nil {
		return
	}
	a.Images = set
	a.Missing = false

	ar := set.AspectRatio()
	if ar > 0 && a.AspectRatio != ar {
		a.AspectRatio = ar
		a.Rect.Height = a.Rect.Width / ar
		b.WakeAnchorRopes(anchorID)
	}
}

// MarkMissing flags an anchor whose source image could not be resolved.
func (b *Board) MarkMissing(anchorID string) {
	if a := b.anchorByID[anchorID]; a != nil {
		a.Missing = true
		a.Images = nil
	}
}

// MoveAnchor places an anchor at a new position and wakes its ropes.
func (b *Board) MoveAnchor(id string, x, y float64) {
	a := b.anchorByID[id]
	if a == nil {
		return
	}
	a.Rect.X = x
	a.Rect.Y = y
	b.WakeAnchorRopes(id)
}

// SetAnchorRect applies a resize result and wakes the anchor's ropes.
func (b *Board) SetAnchorRect(id string, r geometry.RectInt) {
	a := b.anchorByID[id]
	if a == nil {
		return
	}
	a.Rect = r.ToFloat()
	b.WakeAnchorRopes(id)
}

// DeleteAnchor removes an anchor and, first, every rope referencing it.
// Returns the ids of the ropes that were cascaded away.
func (b *Board) DeleteAnchor(id string) []string {
	a := b.anchorByID[id]
	if a == nil {
		return nil
	}

	cascaded := append([]string(nil), b.incident[id]...)
	for _, ropeID := range cascaded {
		b.removeRope(ropeID)
	}

	delete(b.anchorByID, id)
	delete(b.incident, id)
	for i, other := range b.anchors {
		if other.ID == id {
			b.anchors = append(b.anchors[:i], b.anchors[i+1:]...)
			break
		}
	}
	return cascaded
}

// Connect creates a rope between two distinct anchors using the active
// color. Self-connections and duplicate unordered pairs are rejected.
func (b *Board) Connect(aID, bID string) (*Rope, error) {
	if aID == bID {
		return nil, ErrSelfRope
	}
	a := b.anchorByID[aID]
	a2 := b.anchorByID[bID]
	if a == nil || a2 == nil {
		return nil, fmt.Errorf("connect: %w", ErrNotFound)
	}
	if b.RopeBetween(aID, bID) != nil {
		return nil, ErrDuplicateRope
	}

	pa, pb := a.pinVec(), a2.pinVec()
	r := &Rope{
		ID:      uuid.New().String(),
		AID:     aID,
		BID:     bID,
		ColorID: b.ActiveColorID,
		Sim:     rope.New(pa, pb),
		lastA:   pa,
		lastB:   pb,
	}
	b.ropes = append(b.ropes, r)
	b.ropeByID[r.ID] = r
	b.incident[aID] = append(b.incident[aID], r.ID)
	b.incident[bID] = append(b.incident[bID], r.ID)
	return r, nil
}

// RopeBetween returns the rope connecting the unordered pair, or nil.
func (b *Board) RopeBetween(aID, bID string) *Rope {
	for _, ropeID := range b.incident[aID] {
		r := b.ropeByID[ropeID]
		if r != nil && r.HasAnchor(bID) {
			return r
		}
	}
	return nil
}

// DeleteRope removes a rope by id.
func (b *Board) DeleteRope(id string) bool {
	if b.ropeByID[id] == nil {
		return false
	}
	b.removeRope(id)
	return true
}

func (b *Board) removeRope(id string) {
	r := b.ropeByID[id]
	if r == nil {
		return
	}
	delete(b.ropeByID, id)
	b.incident[r.AID] = removeID(b.incident[r.AID], id)
	b.incident[r.BID] = removeID(b.incident[r.BID], id)
	for i, other := range b.ropes {
		if other.ID == id {
			b.ropes = append(b.ropes[:i], b.ropes[i+1:]...)
			break
		}
	}
}

func removeID(ids []string, id string) []string {
	for i, other := range ids {
		if other == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// WakeAnchorRopes wakes every simulation touching the given anchor.
func (b *Board) WakeAnchorRopes(anchorID string) {
	for _, ropeID := range b.incident[anchorID] {
		if r := b.ropeByID[ropeID]; r != nil && r.Sim != nil {
			r.Sim.Wake()
		}
	}
}

// WakeAll wakes every rope. Called on zoom changes and viewport resizes.
func (b *Board) WakeAll() {
	for _, r := range b.ropes {
		if r.Sim != nil {
			r.Sim.Wake()
		}
	}
}

// StepRopes advances every rope simulation by dt with the live pin
// positions. Instant jumps past the reset threshold redistribute the chain
// instead of integrating through it. Returns true if any rope moved.
func (b *Board) StepRopes(dt float64) bool {
	moved := false
	for _, r := range b.ropes {
		a := b.anchorByID[r.AID]
		bb := b.anchorByID[r.BID]
		if a == nil || bb == nil || r.Sim == nil {
			continue
		}
		pa, pb := a.pinVec(), bb.pinVec()

		if r2.Norm(r2.Sub(pa, r.lastA)) > resetJumpDistance ||
			r2.Norm(r2.Sub(pb, r.lastB)) > resetJumpDistance {
			r.Sim.Reset(pa, pb)
			moved = true
		} else if r.Sim.Step(dt, pa, pb) {
			moved = true
		}
		r.lastA, r.lastB = pa, pb
	}
	return moved
}

// SetZoom clamps and applies a zoom level; any change wakes the ropes so
// they re-settle under the new view.
func (b *Board) SetZoom(zoom float64) {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	if zoom == b.Viewport.Zoom {
		return
	}
	b.Viewport.Zoom = zoom
	b.WakeAll()
}

// SetPan moves the viewport. Pan is unconstrained.
func (b *Board) SetPan(x, y float64) {
	b.Viewport.Pan = geometry.Point2D{X: x, Y: y}
}

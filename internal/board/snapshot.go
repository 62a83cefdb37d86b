package board

import (
	yimage "yarnboard/internal/image"
	"yarnboard/internal/rope"
	"yarnboard/pkg/geometry"
)

// SchemaVersion is the current snapshot schema.
const SchemaVersion = 2

// Snapshot is the persisted form of a board. It carries every user-visible
// field; pixel data and simulation chains are rebuilt after load.
type Snapshot struct {
	SchemaVersion int     `json:"schema_version" msgpack:"schema_version"`
	Zoom          float64 `json:"zoom,omitempty" msgpack:"zoom"`
	PanX          float64 `json:"pan_x,omitempty" msgpack:"pan_x"`
	PanY          float64 `json:"pan_y,omitempty" msgpack:"pan_y"`
	Locked        bool    `json:"locked,omitempty" msgpack:"locked"`
	ShowLegend    bool    `json:"show_legend,omitempty" msgpack:"show_legend"`
	ActiveColorID string  `json:"active_color,omitempty" msgpack:"active_color"`
	RenderMode    string  `json:"render_mode,omitempty" msgpack:"render_mode"`

	Keys    []KeyRecord    `json:"keys" msgpack:"keys"`
	Anchors []AnchorRecord `json:"photos" msgpack:"photos"`
	Ropes   []RopeRecord   `json:"ropes" msgpack:"ropes"`
}

// KeyRecord is a persisted color key item.
type KeyRecord struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Color string `json:"color" msgpack:"color"`
}

// AnchorRecord is a persisted anchor. No pixel data: only the source path
// reference travels with the board file.
type AnchorRecord struct {
	ID          string  `json:"id" msgpack:"id"`
	Name        string  `json:"name" msgpack:"name"`
	Path        string  `json:"path,omitempty" msgpack:"path"`
	X           float64 `json:"x" msgpack:"x"`
	Y           float64 `json:"y" msgpack:"y"`
	Width       float64 `json:"w" msgpack:"w"`
	Height      float64 `json:"h" msgpack:"h"`
	AspectRatio float64 `json:"ar,omitempty" msgpack:"ar"`
}

// RopeRecord is a persisted rope.
type RopeRecord struct {
	ID      string `json:"id" msgpack:"id"`
	AID     string `json:"a" msgpack:"a"`
	BID     string `json:"b" msgpack:"b"`
	ColorID string `json:"color,omitempty" msgpack:"color"`
}

// Snapshot captures the current persisted state.
func (b *Board) Snapshot() *Snapshot {
	s := &Snapshot{
		SchemaVersion: SchemaVersion,
		Zoom:          b.Viewport.Zoom,
		PanX:          b.Viewport.Pan.X,
		PanY:          b.Viewport.Pan.Y,
		Locked:        b.Locked,
		ShowLegend:    b.ShowLegend,
		ActiveColorID: b.ActiveColorID,
		RenderMode:    b.RenderMode.String(),
	}

	for _, k := range b.keys {
		s.Keys = append(s.Keys, KeyRecord(k))
	}
	for _, a := range b.anchors {
		s.Anchors = append(s.Anchors, AnchorRecord{
			ID:          a.ID,
			Name:        a.Name,
			Path:        a.Path,
			X:           a.Rect.X,
			Y:           a.Rect.Y,
			Width:       a.Rect.Width,
			Height:      a.Rect.Height,
			AspectRatio: a.AspectRatio,
		})
	}
	for _, r := range b.ropes {
		s.Ropes = append(s.Ropes, RopeRecord{
			ID:      r.ID,
			AID:     r.AID,
			BID:     r.BID,
			ColorID: r.ColorID,
		})
	}
	return s
}

// FromSnapshot rebuilds a board from its persisted form. Missing optional
// fields take their defaults, rope records whose anchors don't resolve are
// dropped silently, and the color key is never left empty.
func FromSnapshot(s *Snapshot) *Board {
	b := &Board{
		anchorByID: make(map[string]*Anchor),
		ropeByID:   make(map[string]*Rope),
		incident:   make(map[string][]string),
		placeX:     placeStartX,
		placeY:     placeStartY,
	}

	b.Viewport.Zoom = s.Zoom
	if b.Viewport.Zoom == 0 {
		b.Viewport.Zoom = 1
	}
	if b.Viewport.Zoom < MinZoom {
		b.Viewport.Zoom = MinZoom
	}
	if b.Viewport.Zoom > MaxZoom {
		b.Viewport.Zoom = MaxZoom
	}
	b.Viewport.Pan = geometry.Point2D{X: s.PanX, Y: s.PanY}
	b.Locked = s.Locked
	b.ShowLegend = s.ShowLegend
	b.RenderMode = yimage.ParseMode(s.RenderMode)

	for _, k := range s.Keys {
		b.keys = append(b.keys, ColorKey(k))
	}
	if len(b.keys) == 0 {
		b.keys = append(b.keys, New().keys[0])
	}
	b.ActiveColorID = s.ActiveColorID
	if _, ok := b.Key(b.ActiveColorID); !ok {
		b.ActiveColorID = b.keys[0].ID
	}

	for _, rec := range s.Anchors {
		ar := rec.AspectRatio
		if ar <= 0 && rec.Height > 0 {
			ar = rec.Width / rec.Height
		}
		if ar <= 0 {
			ar = DefaultAspectRatio
		}
		b.restoreAnchor(&Anchor{
			ID:          rec.ID,
			Name:        rec.Name,
			Path:        rec.Path,
			Rect:        geometry.NewRect(rec.X, rec.Y, rec.Width, rec.Height),
			AspectRatio: ar,
		})
	}

	for _, rec := range s.Ropes {
		a := b.anchorByID[rec.AID]
		a2 := b.anchorByID[rec.BID]
		if a == nil || a2 == nil || rec.AID == rec.BID {
			continue // unresolvable record, dropped
		}
		if b.RopeBetween(rec.AID, rec.BID) != nil {
			continue
		}
		colorID := rec.ColorID
		if _, ok := b.Key(colorID); !ok {
			colorID = b.keys[0].ID
		}
		pa, pb := a.pinVec(), a2.pinVec()
		r := &Rope{
			ID:      rec.ID,
			AID:     rec.AID,
			BID:     rec.BID,
			ColorID: colorID,
			Sim:     rope.New(pa, pb),
			lastA:   pa,
			lastB:   pb,
		}
		b.ropes = append(b.ropes, r)
		b.ropeByID[r.ID] = r
		b.incident[r.AID] = append(b.incident[r.AID], r.ID)
		b.incident[r.BID] = append(b.incident[r.BID], r.ID)
	}

	return b
}

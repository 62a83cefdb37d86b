package app

import (
	"fmt"
	"os"

	yimage "yarnboard/internal/image"
)

// variantResult is one finished piece of background image work, applied on
// the frame path after a liveness check.
type variantResult struct {
	anchorID string
	gen      uint64
	set      *yimage.Set
	err      error
}

// PickedImage is one record handed over by the image picker.
type PickedImage struct {
	Name string
	Data []byte
	Path string
}

// PlaceImages adds one anchor per picked image at the deterministic cascade
// and starts decoding in the background. Entries with neither data nor path
// become missing-flag anchors immediately.
func (s *State) PlaceImages(picked []PickedImage) {
	if len(picked) == 0 {
		return
	}
	var statuses []string
	s.engineMu.Lock()
	for _, p := range picked {
		a := s.board.AddAnchor(p.Name, p.Path)
		switch {
		case len(p.Data) > 0:
			gen := s.bumpGen(a.ID)
			data := p.Data
			path := p.Path
			go s.decodeAndSend(a.ID, gen, path, data)
		case p.Path != "":
			s.ResolveImage(a.ID, p.Path)
		default:
			s.board.MarkMissing(a.ID)
			statuses = append(statuses, fmt.Sprintf("no image data for %q", p.Name))
		}
	}
	s.autosave()
	s.engineMu.Unlock()

	for _, msg := range statuses {
		s.Emit(EventStatus, msg)
	}
	s.SetModified(true)
	s.markRedraw()
}

// ResolveImage reads and decodes the image at path for the given anchor in
// the background.
func (s *State) ResolveImage(anchorID, path string) {
	gen := s.bumpGen(anchorID)
	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			s.results <- variantResult{anchorID: anchorID, gen: gen, err: err}
			return
		}
		s.decodeAndSend(anchorID, gen, path, data)
	}()
}

// AttachImageData decodes inline image bytes for the given anchor in the
// background.
func (s *State) AttachImageData(anchorID string, data []byte) {
	gen := s.bumpGen(anchorID)
	s.engineMu.Lock()
	a := s.board.Anchor(anchorID)
	path := ""
	if a != nil {
		path = a.Path
	}
	s.engineMu.Unlock()
	go func() {
		s.decodeAndSend(anchorID, gen, path, data)
	}()
}

func (s *State) decodeAndSend(anchorID string, gen uint64, path string, data []byte) {
	set, err := yimage.Decode(data)
	if err != nil {
		s.results <- variantResult{anchorID: anchorID, gen: gen, err: err}
		return
	}
	set.Path = path
	set.BuildVariants()
	s.results <- variantResult{anchorID: anchorID, gen: gen, set: set}
}

// bumpGen advances and returns the anchor's image generation.
func (s *State) bumpGen(anchorID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[anchorID]++
	return s.gen[anchorID]
}

func (s *State) currentGen(anchorID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen[anchorID]
}

// Tick advances one frame: apply finished background work, then step every
// awake rope and the connect preview. Takes the engine lock itself.
// Returns true when a redraw is needed.
func (s *State) Tick(dt float64) bool {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	redraw := s.drainResults()

	if dt > maxTickDt {
		dt = maxTickDt
	}
	if s.board.StepRopes(dt) {
		redraw = true
	}
	if s.machine.StepPreview(dt) {
		redraw = true
	}

	s.mu.Lock()
	if s.needsRedraw {
		s.needsRedraw = false
		redraw = true
	}
	s.mu.Unlock()
	return redraw
}

// drainResults applies every queued variant result whose anchor is still
// live and whose generation is current. Stale results are dropped without
// side effects, so completions are idempotent and order-independent.
func (s *State) drainResults() bool {
	applied := false
	for {
		select {
		case r := <-s.results:
			if s.applyResult(r) {
				applied = true
			}
		default:
			return applied
		}
	}
}

func (s *State) applyResult(r variantResult) bool {
	if s.board.Anchor(r.anchorID) == nil {
		return false
	}
	if s.currentGen(r.anchorID) != r.gen {
		return false
	}
	if r.err != nil {
		s.board.MarkMissing(r.anchorID)
		s.Emit(EventStatus, fmt.Sprintf("image unavailable: %v", r.err))
		return true
	}
	s.board.ApplyImage(r.anchorID, r.set)
	s.Emit(EventImageResolved, r.anchorID)
	return true
}

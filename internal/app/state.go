// Package app provides application state, events, and the frame tick that
// drives the simulations and the async image pipeline.
package app

import (
	"fmt"
	"log"
	"sync"

	"yarnboard/internal/board"
	"yarnboard/internal/interact"
	"yarnboard/internal/store"
)

// EventType identifies different application events.
type EventType int

const (
	EventBoardLoaded EventType = iota
	EventBoardSaved
	EventModified
	EventStatus
	EventSelectionChanged
	EventModeChanged
	EventImageResolved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// autosaveKey is where the last board snapshot lives in the Store.
const autosaveKey = "autosave"

// maxTickDt caps the simulation step so long pauses (window hidden, debugger
// stop) do not destabilize the solver.
const maxTickDt = 0.025

// State holds the application state: the board, the interaction machine,
// the autosave store, and the async image pipeline.
type State struct {
	mu sync.RWMutex

	// engineMu serializes the board and the machine between the frame-loop
	// goroutine and fyne's event goroutine. Tick takes it itself; every
	// other caller that reads or mutates the board or the machine must hold
	// it via LockEngine/UnlockEngine.
	engineMu sync.Mutex

	BoardPath string
	Modified  bool

	board   *board.Board
	machine *interact.Machine
	cache   store.Store

	// results carries finished variant-generation work back to the frame
	// loop. Buffered so workers never block on a slow frame.
	results chan variantResult

	// gen tracks the current image generation per anchor id. A result whose
	// generation no longer matches is stale and dropped.
	gen map[string]uint64

	// needsRedraw accumulates between ticks; consumed by Tick.
	needsRedraw bool

	listeners map[EventType][]EventListener
}

// NewState creates the application state around an empty board and the given
// autosave store.
func NewState(cache store.Store) *State {
	s := &State{
		board:     board.New(),
		cache:     cache,
		results:   make(chan variantResult, 16),
		gen:       make(map[string]uint64),
		listeners: make(map[EventType][]EventListener),
	}
	s.machine = interact.NewMachine(s.board)
	s.wireMachine()
	return s
}

func (s *State) wireMachine() {
	s.machine.OnCommit = func() {
		s.SetModified(true)
		s.autosave()
		s.markRedraw()
	}
	s.machine.OnStatus = func(msg string) {
		s.Emit(EventStatus, msg)
	}
	s.machine.OnWake = func() {
		s.markRedraw()
	}
}

// Board returns the current board model. Callers outside the frame tick
// must hold the engine lock while using it.
func (s *State) Board() *board.Board { return s.board }

// Machine returns the interaction state machine. Callers outside the frame
// tick must hold the engine lock while using it.
func (s *State) Machine() *interact.Machine { return s.machine }

// LockEngine takes the lock that serializes board and machine access
// between the frame loop and the event goroutine.
func (s *State) LockEngine() { s.engineMu.Lock() }

// UnlockEngine releases the engine lock.
func (s *State) UnlockEngine() { s.engineMu.Unlock() }

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the board as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// SetMode switches the interaction tool and announces it.
func (s *State) SetMode(mode interact.Mode) {
	s.engineMu.Lock()
	s.machine.SetMode(mode)
	s.engineMu.Unlock()
	s.Emit(EventModeChanged, mode)
	s.markRedraw()
}

func (s *State) markRedraw() {
	s.mu.Lock()
	s.needsRedraw = true
	s.mu.Unlock()
}

// Save writes the board to path, picking the format by extension.
func (s *State) Save(path string) error {
	s.engineMu.Lock()
	err := board.SaveFile(s.board, path)
	s.engineMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	s.mu.Lock()
	s.BoardPath = path
	s.Modified = false
	s.mu.Unlock()
	s.Emit(EventBoardSaved, path)
	return nil
}

// Load reads a board from path, replacing the current one. The previous
// board stays in place on failure.
func (s *State) Load(path string) error {
	b, err := board.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	s.adoptBoard(b, path)
	s.Emit(EventBoardLoaded, path)
	return nil
}

// NewBoard replaces the current board with an empty one.
func (s *State) NewBoard() {
	s.adoptBoard(board.New(), "")
	s.cache.Delete(autosaveKey)
	s.Emit(EventBoardLoaded, "")
}

// RestoreAutosave brings back the last autosaved board, if any. Reports
// whether a board was restored.
func (s *State) RestoreAutosave() bool {
	data, ok := s.cache.Get(autosaveKey)
	if !ok {
		return false
	}
	snap, err := board.DecodeSnapshot(data)
	if err != nil {
		log.Printf("autosave cache is unreadable, ignoring: %v", err)
		return false
	}
	s.adoptBoard(board.FromSnapshot(snap), "")
	s.Emit(EventBoardLoaded, "")
	s.Emit(EventStatus, "restored autosaved board")
	return true
}

// adoptBoard swaps in a new board and kicks off image resolution for every
// anchor that references a path.
func (s *State) adoptBoard(b *board.Board, path string) {
	s.mu.Lock()
	s.BoardPath = path
	s.Modified = false
	s.gen = make(map[string]uint64)
	s.mu.Unlock()

	s.engineMu.Lock()
	s.board = b
	s.machine.SetBoard(b)
	for _, a := range b.Anchors() {
		if a.Path != "" {
			s.ResolveImage(a.ID, a.Path)
		} else {
			b.MarkMissing(a.ID)
		}
	}
	s.engineMu.Unlock()

	s.Emit(EventSelectionChanged, "")
	s.markRedraw()
}

// autosave pushes the current snapshot into the cache. The caller must hold
// the engine lock. Failures degrade via the store's own fallback; an encode
// failure is logged and dropped.
func (s *State) autosave() {
	data, err := board.EncodeSnapshot(s.board.Snapshot())
	if err != nil {
		log.Printf("autosave encode failed: %v", err)
		return
	}
	if err := s.cache.Set(autosaveKey, data); err != nil {
		log.Printf("autosave write failed: %v", err)
	}
}

// Package rope implements the yarn simulation: a chain of mass points under
// damped Verlet integration with Gauss-Seidel distance constraints, endpoints
// pinned to the two anchors. A settled chain goes to sleep and costs O(1)
// per frame until something perturbs it.
package rope

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// Segments is the number of distance constraints per rope; the chain
	// carries Segments+1 mass points.
	Segments = 18

	relaxPasses = 24
	subSteps    = 2

	damping = 0.985
	gravity = 900.0 // world units per second squared

	// slack stretches the rest length past the straight-line distance so a
	// settled rope sags instead of pulling taut.
	slack = 1.15

	// sleepEpsilon is the per-frame interior displacement below which the
	// chain counts as still.
	sleepEpsilon = 0.01
	// sleepAfter is how many consecutive still frames put the chain to sleep.
	sleepAfter = 8
)

// Sim is the simulation state for a single rope.
type Sim struct {
	pts     []r2.Vec
	prev    []r2.Vec
	scratch []r2.Vec

	rest        float64
	asleep      bool
	stillFrames int
}

// New creates a simulation with its points distributed between a and b.
func New(a, b r2.Vec) *Sim {
	s := &Sim{
		pts:     make([]r2.Vec, Segments+1),
		prev:    make([]r2.Vec, Segments+1),
		scratch: make([]r2.Vec, Segments+1),
	}
	s.Reset(a, b)
	return s
}

// Reset redistributes the chain linearly between the two anchors and clears
// all motion. Used on creation and after instant anchor jumps, where carrying
// the old point positions would whip the rope across the board.
func (s *Sim) Reset(a, b r2.Vec) {
	n := float64(Segments)
	for i := range s.pts {
		t := float64(i) / n
		s.pts[i] = r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
		s.prev[i] = s.pts[i]
	}
	s.rest = r2.Norm(r2.Sub(b, a)) / n * slack
	s.asleep = false
	s.stillFrames = 0
}

// Wake clears the sleep state immediately.
func (s *Sim) Wake() {
	s.asleep = false
	s.stillFrames = 0
}

// Asleep reports whether the chain has settled.
func (s *Sim) Asleep() bool {
	return s.asleep
}

// Points returns the current chain for rendering. The slice is owned by the
// simulation; callers must not retain it across steps.
func (s *Sim) Points() []r2.Vec {
	return s.pts
}

// Step advances the simulation by dt with the endpoints pinned to a and b.
// Endpoints are re-pinned even while asleep so the rope always meets its
// anchors. Returns true if anything moved.
func (s *Sim) Step(dt float64, a, b r2.Vec) bool {
	last := len(s.pts) - 1

	// Endpoint motion wakes the chain before the asleep short-circuit.
	if r2.Norm(r2.Sub(a, s.pts[0])) > sleepEpsilon ||
		r2.Norm(r2.Sub(b, s.pts[last])) > sleepEpsilon {
		s.Wake()
	}

	s.pin(a, b)

	if s.asleep {
		return false
	}
	if dt <= 0 {
		return false
	}

	// Rest length follows the live endpoint separation so the rope breathes
	// with anchor motion instead of fighting it.
	s.rest = r2.Norm(r2.Sub(b, a)) / float64(Segments) * slack

	// Displacement is measured net of the constraint passes; the raw Verlet
	// move always contains the gravity term and would defeat the sleep test.
	var maxDisp float64
	sub := dt / subSteps
	for step := 0; step < subSteps; step++ {
		if d := s.substep(sub, a, b); d > maxDisp {
			maxDisp = d
		}
	}

	if maxDisp < sleepEpsilon {
		s.stillFrames++
		if s.stillFrames >= sleepAfter {
			s.asleep = true
		}
	} else {
		s.stillFrames = 0
	}

	return true
}

// pin forces the two rope endpoints onto the anchor positions.
func (s *Sim) pin(a, b r2.Vec) {
	last := len(s.pts) - 1
	s.pts[0] = a
	s.prev[0] = a
	s.pts[last] = b
	s.prev[last] = b
}

// substep runs one Verlet integration followed by the constraint passes and
// returns the largest net interior-point displacement.
func (s *Sim) substep(dt float64, a, b r2.Vec) float64 {
	before := s.scratch
	copy(before, s.pts)

	s.integrate(dt)
	s.relax(a, b)

	var maxDisp float64
	for i := 1; i < len(s.pts)-1; i++ {
		if d := r2.Norm(r2.Sub(s.pts[i], before[i])); d > maxDisp {
			maxDisp = d
		}
	}
	return maxDisp
}

// integrate advances interior points by damped Verlet.
func (s *Sim) integrate(dt float64) {
	g := gravity * dt * dt

	for i := 1; i < len(s.pts)-1; i++ {
		p := s.pts[i]
		vel := r2.Scale(damping, r2.Sub(p, s.prev[i]))
		next := r2.Add(p, vel)
		next.Y += g

		s.prev[i] = p
		s.pts[i] = next
	}
}

// relax runs the Gauss-Seidel constraint passes, moving both ends of every
// segment half the length error toward the rest length, re-pinning the rope
// endpoints after each pass.
func (s *Sim) relax(a, b r2.Vec) {
	for pass := 0; pass < relaxPasses; pass++ {
		for i := 0; i < len(s.pts)-1; i++ {
			delta := r2.Sub(s.pts[i+1], s.pts[i])
			dist := r2.Norm(delta)
			if dist == 0 {
				continue
			}
			diff := (dist - s.rest) / dist
			half := r2.Scale(0.5*diff, delta)
			s.pts[i] = r2.Add(s.pts[i], half)
			s.pts[i+1] = r2.Sub(s.pts[i+1], half)
		}
		s.pts[0] = a
		s.pts[len(s.pts)-1] = b
	}
}

// Settle runs the simulation with stationary endpoints until it sleeps or
// the frame budget runs out. Used by export and the headless harness.
func (s *Sim) Settle(a, b r2.Vec, maxFrames int) int {
	const frame = 1.0 / 60.0
	for i := 0; i < maxFrames; i++ {
		s.Step(frame, a, b)
		if s.asleep {
			return i + 1
		}
	}
	return maxFrames
}

// Length returns the current polyline length of the chain.
func (s *Sim) Length() float64 {
	var total float64
	for i := 0; i < len(s.pts)-1; i++ {
		total += r2.Norm(r2.Sub(s.pts[i+1], s.pts[i]))
	}
	return total
}

// MaxSag returns how far the chain hangs below the straight line between its
// endpoints, as a quick plausibility measure.
func (s *Sim) MaxSag() float64 {
	a := s.pts[0]
	b := s.pts[len(s.pts)-1]
	var sag float64
	for _, p := range s.pts {
		t := 0.5
		if dx := b.X - a.X; dx != 0 {
			t = (p.X - a.X) / dx
		}
		lineY := a.Y + (b.Y-a.Y)*math.Min(math.Max(t, 0), 1)
		if d := p.Y - lineY; d > sag {
			sag = d
		}
	}
	return sag
}

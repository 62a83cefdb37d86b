// Command ropesim runs the yarn solver headless: it settles a rope between
// two pins, optionally moves one endpoint, and reports settle frames, length,
// and sag.
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"

	"yarnboard/internal/rope"
)

func main() {
	ax := flag.Float64("ax", 0, "first pin x")
	ay := flag.Float64("ay", 0, "first pin y")
	bx := flag.Float64("bx", 400, "second pin x")
	by := flag.Float64("by", 0, "second pin y")
	moveX := flag.Float64("move-x", 0, "shift the second pin by this x after settling")
	moveY := flag.Float64("move-y", 0, "shift the second pin by this y after settling")
	maxFrames := flag.Int("max-frames", 2000, "frame budget per settle")
	flag.Parse()

	a := r2.Vec{X: *ax, Y: *ay}
	b := r2.Vec{X: *bx, Y: *by}

	sim := rope.New(a, b)
	frames := sim.Settle(a, b, *maxFrames)
	if frames >= *maxFrames {
		fmt.Fprintf(os.Stderr, "rope did not settle within %d frames\n", *maxFrames)
		os.Exit(1)
	}
	report("initial settle", sim, frames)

	if *moveX != 0 || *moveY != 0 {
		b.X += *moveX
		b.Y += *moveY
		frames = sim.Settle(a, b, *maxFrames)
		if frames >= *maxFrames {
			fmt.Fprintf(os.Stderr, "rope did not re-settle within %d frames\n", *maxFrames)
			os.Exit(1)
		}
		report("after move", sim, frames)
	}
}

func report(stage string, sim *rope.Sim, frames int) {
	fmt.Printf("%s:\n", stage)
	fmt.Printf("  frames to sleep: %d\n", frames)
	fmt.Printf("  chain length:    %.2f\n", sim.Length())
	fmt.Printf("  max sag:         %.2f\n", sim.MaxSag())
	pts := sim.Points()
	fmt.Printf("  endpoints:       (%.1f, %.1f) .. (%.1f, %.1f)\n",
		pts[0].X, pts[0].Y, pts[len(pts)-1].X, pts[len(pts)-1].Y)
}

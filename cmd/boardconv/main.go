// Command boardconv converts board files between the JSON (.yb) and msgpack
// (.ybb) formats, reporting what the load had to drop.
package main

import (
	"flag"
	"fmt"
	"os"

	"yarnboard/internal/board"
)

func main() {
	in := flag.String("in", "", "input board file (.yb or .ybb)")
	out := flag.String("out", "", "output board file (.yb or .ybb)")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Println("Usage: boardconv -in board.yb -out board.ybb")
		os.Exit(1)
	}

	b, err := board.LoadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *in, err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %s: %d anchors, %d ropes, %d color keys\n",
		*in, len(b.Anchors()), len(b.Ropes()), len(b.Keys()))

	if err := board.SaveFile(b, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

package main

import (
	"fmt"
	"io"
	"time"
)

// timeLog records how long each named stage of a run took.
type timeLog struct {
	start  time.Time
	names  []string
	spans  []time.Duration
}

func (tl *timeLog) Start() { tl.start = time.Now() }

func (tl *timeLog) Stop(name string) {
	tl.names = append(tl.names, name)
	tl.spans = append(tl.spans, time.Since(tl.start))
}

func (tl *timeLog) Print(w io.Writer) {
	width := 0
	for _, name := range tl.names {
		if len(name) > width { width = len(name) }
	}

	fmt.Fprintln(w, "Timing:")
	for i, name := range tl.names {
		fmt.Fprintf(w, "  %-*s  %.3f s\n", width+1, name+":", tl.spans[i].Seconds())
	}
}

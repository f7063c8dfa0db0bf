package main

import (
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/cwbudde/algo-dsp/dsp/upols/routing"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
)

// runWatch opens a small termbox dashboard showing the routing table's
// input/output occupancy grid, refreshed on a tick until 'q' or Esc.
func runWatch(rc *routing.Convolver[float64, complex128]) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("termbox init: %w", err)
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	blocks := 0
	drawWatch(rc, blocks)
	for {
		select {
		case ev := <-eventQueue:
			if ev.Type == termbox.EventKey && (ev.Key == termbox.KeyEsc || ev.Ch == 'q') {
				return nil
			}
			if ev.Type == termbox.EventResize {
				drawWatch(rc, blocks)
			}
		case <-ticker.C:
			blocks++
			drawWatch(rc, blocks)
		}
	}
}

func drawWatch(rc *routing.Convolver[float64, complex128], blocks int) {
	_ = termbox.Clear(colDef, colDef)
	c := rc.Core()

	printTB(0, 0, termbox.ColorCyan, colDef, "upolsinfo watch - routing occupancy")
	printTB(0, 1, colWhite, colDef, fmt.Sprintf("block %d  (%d samples elapsed)", blocks, blocks*c.BlockLength()))
	printTB(0, 2, colDef, colDef, "Press q or Esc to quit.")

	gridTop := 4
	printTB(8, gridTop, colYellow, colDef, "out ->")
	for o := 0; o < c.NumOutputs(); o++ {
		printTB(10+o*3, gridTop, colYellow, colDef, fmt.Sprintf("%2d", o))
	}

	routed := make(map[[2]int]bool, rc.Table().Len())
	for _, e := range rc.Table().Entries() {
		routed[[2]int{e.InIdx, e.OutIdx}] = true
	}

	for in := 0; in < c.NumInputs(); in++ {
		row := gridTop + 1 + in
		printTB(0, row, colYellow, colDef, fmt.Sprintf("in %2d", in))
		for out := 0; out < c.NumOutputs(); out++ {
			mark := " ."
			col := colDef
			if routed[[2]int{in, out}] {
				mark = " X"
				col = colGreen
			}
			printTB(10+out*3, row, col, colDef, mark)
		}
	}

	_ = termbox.Flush()
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, r := range msg {
		termbox.SetCell(x, y, r, fg, bg)
		x++
	}
}

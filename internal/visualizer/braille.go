package visualizer

import (
	"math"
	"strings"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a Braille dot grid. Each cell is 2x4 dots and carries the colour of
// the nearest point plotted into it.
type Canvas struct {
	cols, rows int
	pattern    []uint8
	color      []colorRGB
	depth      []float64
}

// NewCanvas creates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell dimensions and clears the canvas.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		n := cols * rows
		c.pattern = make([]uint8, n)
		c.color = make([]colorRGB, n)
		c.depth = make([]float64, n)
	}
	c.Clear()
}

// Clear removes every dot.
func (c *Canvas) Clear() {
	for i := range c.pattern {
		c.pattern[i] = 0
		c.color[i] = colorRGB{}
		c.depth[i] = math.Inf(1)
	}
}

// DotSize reports the canvas size in dots.
func (c *Canvas) DotSize() (w, h int) { return c.cols * 2, c.rows * 4 }

// Set lights the dot at (x, y). A cell keeps the colour of its nearest dot.
func (c *Canvas) Set(x, y int, depth float64, col colorRGB) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.pattern[i] |= 1 << brailleBits[x%2][y%4]
	if depth < c.depth[i] {
		c.depth[i] = depth
		c.color[i] = col
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return false
	}
	return c.pattern[(y/4)*c.cols+x/2]&(1<<brailleBits[x%2][y%4]) != 0
}

// String renders the canvas with ANSI colour where the terminal supports it.
func (c *Canvas) String() string {
	var sb strings.Builder
	state := newANSIState()
	for row := range c.rows {
		if row > 0 {
			state.reset(&sb)
			sb.WriteByte('\n')
		}
		for col := range c.cols {
			i := row*c.cols + col
			if c.pattern[i] == 0 {
				sb.WriteRune(0x2800)
				continue
			}
			state.set(&sb, c.color[i])
			sb.WriteRune(rune(0x2800 + int(c.pattern[i])))
		}
	}
	state.reset(&sb)
	return sb.String()
}

package viz

import "strings"

const brailleBlank = 0x2800

// Each cell is a 2x4 braille dot matrix:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille plot. Width and Height are in cells; the dot grid is
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = brailleBlank
		}
	}
}

// Set lights the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= pixelMap[y%4][x%2]
}

// DrawLine uses Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Plot draws values as a polyline spread across the full width, scaled so that
// 0 is the bottom row and maxY the top one.
func (c *Canvas) Plot(values []float64, maxY float64) {
	if len(values) == 0 || maxY <= 0 {
		return
	}
	dotsW, dotsH := c.Width*2, c.Height*4

	point := func(i int) (int, int) {
		x := 0
		if len(values) > 1 {
			x = i * (dotsW - 1) / (len(values) - 1)
		}
		v := values[i]
		if v < 0 {
			v = 0
		}
		if v > maxY {
			v = maxY
		}
		y := dotsH - 1 - int(v/maxY*float64(dotsH-1))
		return x, y
	}

	px, py := point(0)
	c.Set(px, py)
	for i := 1; i < len(values); i++ {
		x, y := point(i)
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

func (c *Canvas) Lines() []string {
	out := make([]string, len(c.grid))
	for i, row := range c.grid {
		out[i] = string(row)
	}
	return out
}

func (c *Canvas) String() string { return strings.Join(c.Lines(), "\n") }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package tui

import "go-bounce/bounce"

// ArenaCells rasterises the ball onto a cols x rows grid. The ball always
// covers at least the cell holding its centre.
func ArenaCells(b *bounce.Ball, a bounce.Arena, cols, rows int) [][]bool {
	grid := make([][]bool, rows)
	for y := range grid {
		grid[y] = make([]bool, cols)
	}
	if cols == 0 || rows == 0 || a.Width <= 0 || a.Height <= 0 {
		return grid
	}

	sx := float64(cols) / a.Width
	sy := float64(rows) / a.Height
	cx, cy := b.Pos.X*sx, b.Pos.Y*sy
	rx, ry := b.Radius*sx, b.Radius*sy

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				grid[y][x] = true
			}
		}
	}

	x := min(max(int(cx), 0), cols-1)
	y := min(max(int(cy), 0), rows-1)
	grid[y][x] = true
	return grid
}

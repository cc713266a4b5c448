package layout

import (
	"fmt"
	"io"
	"strings"
)

const heightDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// stair glyphs by rotation: north, east, south, west
var stairGlyphs = map[int]byte{0: '^', 90: '>', 180: 'v', 270: '<'}

// Render draws a top-down map of a result. Each tile shows the height of its
// cell relative to the lowest cell, stair tiles show the climb direction and
// empty tiles are dots. North is up.
func Render(w io.Writer, r *ResultFile, legend bool) error {
	var out strings.Builder

	out.WriteString(fmt.Sprintf("Layout %q (seed: %d, %s strategy)\n", r.Layout, r.Seed, r.Strategy))
	out.WriteString(strings.Repeat("=", 60) + "\n")

	if len(r.Cells) == 0 {
		out.WriteString("(no cells)\n")
		_, err := io.WriteString(w, out.String())
		return err
	}

	minX, minZ, minY := r.Cells[0].X, r.Cells[0].Z, r.Cells[0].Y
	maxX, maxZ := minX, minZ
	for _, c := range r.Cells {
		minX = min(minX, c.X)
		minZ = min(minZ, c.Z)
		minY = min(minY, c.Y)
		maxX = max(maxX, c.X+c.Width-1)
		maxZ = max(maxZ, c.Z+c.Length-1)
	}

	width := maxX - minX + 1
	rows := make([][]byte, maxZ-minZ+1)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(".", width))
	}

	for _, c := range r.Cells {
		glyph := byte('?')
		if rel := c.Y - minY; rel < len(heightDigits) {
			glyph = heightDigits[rel]
		}
		for z := c.Z; z < c.Z+c.Length; z++ {
			for x := c.X; x < c.X+c.Width; x++ {
				rows[z-minZ][x-minX] = glyph
			}
		}
	}
	for _, s := range r.Stairs {
		if g, ok := stairGlyphs[s.Rotation]; ok {
			rows[s.Tile[2]-minZ][s.Tile[0]-minX] = g
		}
	}

	// highest z first so north is at the top
	for i := len(rows) - 1; i >= 0; i-- {
		out.Write(rows[i])
		out.WriteByte('\n')
	}

	out.WriteString(fmt.Sprintf("\n%d cells, %d stairs, converged: %v\n", len(r.Cells), len(r.Stairs), r.Converged))
	if legend {
		out.WriteString(renderLegend(minY))
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func renderLegend(base int) string {
	return fmt.Sprintf(`
Legend:
  0-9a-z  cell height above %d
  ^ > v <  stair climbing north, east, south, west
  .       no cell
`, base)
}

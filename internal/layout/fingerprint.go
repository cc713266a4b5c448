package layout

import (
	"encoding/binary"
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
)

// Source is what a fingerprint is computed from
type Source interface {
	Cells() []*cellgraph.Cell
	AllStairs() []cellgraph.StairInfo
}

// Fingerprint returns the hex BLAKE2b-256 digest of every cell footprint and
// every stair. Two runs with identical heights and stairs share a fingerprint.
func Fingerprint(g Source) string {
	h, _ := blake2b.New256(nil)

	cells := g.Cells()
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })

	buf := make([]byte, 0, 64)
	for _, c := range cells {
		buf = appendInts(buf[:0], c.ID, int(c.Type),
			c.Bounds.X(), c.Bounds.Height(), c.Bounds.Z(), c.Bounds.Width(), c.Bounds.Length())
		h.Write(buf)
	}

	// section separator
	h.Write([]byte{0xff})

	for _, s := range g.AllStairs() {
		buf = appendInts(buf[:0], s.OwnerCell, s.ConnectedToCell,
			s.IPosition.X, s.IPosition.Y, s.IPosition.Z, int(s.Rotation))
		h.Write(buf)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func appendInts(buf []byte, values ...int) []byte {
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(v)))
	}
	return buf
}

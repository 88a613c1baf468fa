package packed

import (
	"math"

	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

const (
	// Magic identifies a packed graph.
	Magic = "KLGR"

	// Version is the only layout version this package reads and writes.
	Version uint16 = 1

	// DefaultScale multiplies layout coordinates before quantization.
	DefaultScale = 1.0

	headerSize = 20
	pieceSize  = 2
	idSize     = klotski.FingerprintSize
	cellSize   = 2
	xyzSize    = 6
	edgeSize   = 10
)

// Header is the fixed 20-byte prefix of a packed graph.
type Header struct {
	Version     uint16
	NodeCount   uint32
	EdgeCount   uint32
	PieceCount  uint16
	BoardWidth  uint8
	BoardHeight uint8
	ScaleX10    uint16
}

// Scale returns the position scale factor.
func (h Header) Scale() float64 {
	return float64(h.ScaleX10) / 10
}

// Size returns the total byte length of a packed graph with this header.
func (h Header) Size() uint64 {
	nodes := uint64(h.NodeCount)
	pieces := uint64(h.PieceCount)
	return headerSize +
		pieces*pieceSize +
		nodes*idSize +
		nodes*pieces*cellSize +
		nodes*xyzSize +
		uint64(h.EdgeCount)*edgeSize
}

// Quantize scales v and rounds it half-to-even into the int16 range.
// NaN quantizes to zero.
func Quantize(v, scale float64) int16 {
	scaled := math.RoundToEven(v * scale)
	switch {
	case math.IsNaN(scaled):
		return 0
	case scaled < math.MinInt16:
		return math.MinInt16
	case scaled > math.MaxInt16:
		return math.MaxInt16
	}
	return int16(scaled)
}

// Dequantize reverses Quantize up to the rounding step.
func Dequantize(q int16, scale float64) float64 {
	return float64(q) / scale
}

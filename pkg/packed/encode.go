package packed

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

// Options configures Encode.
type Options struct {
	// Scale multiplies layout coordinates before quantization.
	// Zero means DefaultScale.
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale == 0 {
		return DefaultScale
	}
	return o.Scale
}

// Encode packs a validated interchange graph and its 3D layout. Piece ids
// must be 0..n-1 since the packed piece table is indexed by id.
func Encode(doc graph.Graph, layout graph.Layout, opts Options) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	h, err := headerFor(doc, opts.scale())
	if err != nil {
		return nil, err
	}
	index := doc.Index()

	buf := make([]byte, 0, h.Size())
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = binary.LittleEndian.AppendUint32(buf, h.NodeCount)
	buf = binary.LittleEndian.AppendUint32(buf, h.EdgeCount)
	buf = binary.LittleEndian.AppendUint16(buf, h.PieceCount)
	buf = append(buf, h.BoardWidth, h.BoardHeight)
	buf = binary.LittleEndian.AppendUint16(buf, h.ScaleX10)

	for i, p := range doc.Pieces {
		if p.ID != i {
			return nil, errors.New(errors.ErrCodeInvalidInput, "piece ids must be 0..%d, found %d at index %d", len(doc.Pieces)-1, p.ID, i)
		}
		w, err := toU8(p.Width, "piece %d width", p.ID)
		if err != nil {
			return nil, err
		}
		ht, err := toU8(p.Height, "piece %d height", p.ID)
		if err != nil {
			return nil, err
		}
		buf = append(buf, w, ht)
	}

	for _, n := range doc.Nodes {
		id, err := hex.DecodeString(n.ID)
		if err != nil || len(id) != idSize {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node id %q is not %d hex characters", n.ID, 2*idSize)
		}
		buf = append(buf, id...)
	}

	for _, n := range doc.Nodes {
		for k, xy := range n.Positions {
			x, err := toU8(xy[0], "node %s piece %d x", n.ID, k)
			if err != nil {
				return nil, err
			}
			y, err := toU8(xy[1], "node %s piece %d y", n.ID, k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, x, y)
		}
	}

	scale := h.Scale()
	for _, n := range doc.Nodes {
		xyz := layout[n.ID]
		for _, v := range xyz {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(Quantize(v, scale)))
		}
	}

	for i, e := range doc.Edges {
		piece, err := toU8(e.PieceID, "edge %d piece id", i)
		if err != nil {
			return nil, err
		}
		dir, err := klotski.ParseDirection(e.Direction)
		if err != nil {
			return nil, err
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(index[e.Source]))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(index[e.Target]))
		buf = append(buf, piece, uint8(dir))
	}
	return buf, nil
}

// headerFor checks every count against its field width.
func headerFor(doc graph.Graph, scale float64) (Header, error) {
	if uint64(len(doc.Nodes)) > math.MaxUint32 {
		return Header{}, errors.New(errors.ErrCodeOverflow, "%d nodes exceed the u32 node count", len(doc.Nodes))
	}
	if uint64(len(doc.Edges)) > math.MaxUint32 {
		return Header{}, errors.New(errors.ErrCodeOverflow, "%d edges exceed the u32 edge count", len(doc.Edges))
	}
	if len(doc.Pieces) > math.MaxUint16 {
		return Header{}, errors.New(errors.ErrCodeOverflow, "%d pieces exceed the u16 piece count", len(doc.Pieces))
	}
	w, err := toU8(doc.Metadata.BoardWidth, "board width")
	if err != nil {
		return Header{}, err
	}
	ht, err := toU8(doc.Metadata.BoardHeight, "board height")
	if err != nil {
		return Header{}, err
	}
	x10 := math.Round(scale * 10)
	if math.IsNaN(x10) || x10 < 1 || x10 > math.MaxUint16 {
		return Header{}, errors.New(errors.ErrCodeOverflow, "position scale %g does not fit the u16 scale field", scale)
	}
	return Header{
		Version:     Version,
		NodeCount:   uint32(len(doc.Nodes)),
		EdgeCount:   uint32(len(doc.Edges)),
		PieceCount:  uint16(len(doc.Pieces)),
		BoardWidth:  w,
		BoardHeight: ht,
		ScaleX10:    uint16(x10),
	}, nil
}

func toU8(v int, format string, args ...any) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, errors.New(errors.ErrCodeOverflow, "%s: %d does not fit in u8", fmt.Sprintf(format, args...), v)
	}
	return uint8(v), nil
}

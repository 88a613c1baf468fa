package packed

// Stats summarizes one packing run.
type Stats struct {
	Nodes            int
	Edges            int
	Pieces           int
	Codec            string
	RawSize          int
	CompressedSize   int
	MissingPositions int

	// InputSize is the combined size of the JSON inputs, when known.
	InputSize int64
}

// Ratio returns raw size over compressed size, or 0 when nothing was
// compressed.
func (s Stats) Ratio() float64 {
	if s.CompressedSize == 0 {
		return 0
	}
	return float64(s.RawSize) / float64(s.CompressedSize)
}

// Savings returns the fraction of InputSize saved by the compressed
// artifact, or 0 when InputSize is unknown.
func (s Stats) Savings() float64 {
	if s.InputSize <= 0 {
		return 0
	}
	return 1 - float64(s.CompressedSize)/float64(s.InputSize)
}

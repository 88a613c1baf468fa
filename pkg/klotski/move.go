package klotski

// Move is one legal single-step translation of one piece.
type Move struct {
	Next      *State
	PieceID   int
	Direction Direction
}

// Moves returns every legal move from s, in piece order and then in the
// direction order left, right, up, down. A piece with no legal move
// contributes nothing.
func (s *State) Moves() []Move {
	occ := s.occupancy()
	var moves []Move
	for i, p := range s.pieces {
		for _, d := range moveOrder {
			next := p.Moved(d)
			if !s.board.Contains(next.X, next.Y, next.Width, next.Height) {
				continue
			}
			if !occ.free(p.ID, next.X, next.Y, next.Width, next.Height) {
				continue
			}
			moves = append(moves, Move{
				Next:      s.replace(i, next),
				PieceID:   p.ID,
				Direction: d,
			})
		}
	}
	return moves
}

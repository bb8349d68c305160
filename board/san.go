package board

import (
	"fmt"

	"github.com/notnil/chess"
)

var notnilPromotions = map[Role]chess.PieceType{
	NoRole: chess.NoPieceType,
	Knight: chess.Knight,
	Bishop: chess.Bishop,
	Rook:   chess.Rook,
	Queen:  chess.Queen,
}

// SAN renders a legal move in standard algebraic notation, including check and mate
// markers ("Nf3", "exd6", "O-O", "e8=Q+", "Qxf7#").
func (p Position) SAN(m Move) (string, error) {
	if m.IsNone() {
		return "--", nil
	}
	opt, err := chess.FEN(p.FEN())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()
	promo, ok := notnilPromotions[m.Promotion()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	for _, vm := range pos.ValidMoves() {
		if vm.S1() == chess.Square(m.From()) && vm.S2() == chess.Square(m.Dest()) && vm.Promo() == promo {
			return chess.AlgebraicNotation{}.Encode(pos, vm), nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrIllegalMove, m, p.FEN())
}

package domain

import "errors"

// Rejections. A command failing with one of these leaves the game untouched.
var (
	ErrOutOfTurn    = errors.New("out of turn")
	ErrIllegalBid   = errors.New("illegal bid")
	ErrIllegalCard  = errors.New("illegal card")
	ErrInvalidPhase = errors.New("invalid phase")
)

package tetris

import "errors"

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidAction    = errors.New("invalid action")
	ErrUnknownKind      = errors.New("unknown tetromino kind")
	ErrInvalidConfig    = errors.New("invalid config")
)

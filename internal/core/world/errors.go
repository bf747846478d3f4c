package world

import "errors"

var (
	ErrWorldStopped     = errors.New("world is stopped")
	ErrNameTaken        = errors.New("entity name already taken")
	ErrInvalidBlueprint = errors.New("invalid blueprint")
)

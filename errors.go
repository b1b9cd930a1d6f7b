package figure3d

import "errors"

var (
	ErrInvalidPrimitive  = errors.New("invalid primitive parameters")
	ErrNoActiveObject    = errors.New("no active object")
	ErrActiveNotSelected = errors.New("active object is not selected")
	ErrUnknownFigure     = errors.New("unknown figure")
	ErrUnknownFormat     = errors.New("unknown export format")
	ErrMissingOutput     = errors.New("missing output path argument")
)

package archive

import "errors"

var (
	ErrArchive     = errors.New("invalid archive")
	ErrUnsafePath  = errors.New("archive entry escapes destination")
	ErrUnsupported = errors.New("unsupported archive entry")
)

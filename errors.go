package splitfile_go

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrInvalidVolumeSize = fmt.Errorf("volume size must be positive: %w", fs.ErrInvalid)
	ErrInvalidOpenMode   = fmt.Errorf("invalid combination of open options: %w", fs.ErrInvalid)
	ErrNegativeSeek      = fmt.Errorf("cannot seek to negative position in the file: %w", fs.ErrInvalid)
	ErrSeekOverflow      = fmt.Errorf("seek position overflows: %w", fs.ErrInvalid)
	ErrInvalidWhence     = fmt.Errorf("invalid whence: %w", fs.ErrInvalid)
	ErrFileClosed        = errors.New("split file already closed")
)

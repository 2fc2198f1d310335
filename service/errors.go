package service

import "errors"

var (
	ErrInvalidName   = errors.New("invalid split file name")
	ErrInvalidMode   = errors.New("invalid open mode")
	ErrFileNotFound  = errors.New("split file not found in catalog")
	ErrFileNotOpen   = errors.New("split file is not open")
	ErrDataDirInUse  = errors.New("the data directory is used by another process")
	ErrCatalogUpdate = errors.New("failed to update catalog")
)

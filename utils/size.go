package utils

import (
	"errors"

	"github.com/c2h5oh/datasize"
	"github.com/dustin/go-humanize"
)

var ErrSizeNotPositive = errors.New("size must be positive")

// 解析 "64MB"、"4096" 这样的大小，单位按 1024 进位
func ParseSize(s string) (int64, error) {
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	if size == 0 || size.Bytes() > uint64(1<<63-1) {
		return 0, ErrSizeNotPositive
	}
	return int64(size.Bytes()), nil
}

// 便于阅读的大小
func HumanSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

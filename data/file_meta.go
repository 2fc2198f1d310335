package data

import (
	"encoding/binary"
	"errors"
)

var ErrInvalidFileMeta = errors.New("invalid file meta")

const maxFileMetaSize = binary.MaxVarintLen64 * 2

// 目录中记录的分卷文件元数据
type FileMeta struct {
	VolSize int64 // 卷大小
	Created int64 // 创建时间
}

func (fm *FileMeta) Encode() []byte {
	buf := make([]byte, maxFileMetaSize)
	index := 0
	index += binary.PutVarint(buf[index:], fm.VolSize)
	index += binary.PutVarint(buf[index:], fm.Created)
	return buf[:index]
}

func DecodeFileMeta(b []byte) (*FileMeta, error) {
	volSize, n := binary.Varint(b)
	if n <= 0 {
		return nil, ErrInvalidFileMeta
	}
	created, m := binary.Varint(b[n:])
	if m <= 0 {
		return nil, ErrInvalidFileMeta
	}
	return &FileMeta{VolSize: volSize, Created: created}, nil
}

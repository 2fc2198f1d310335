package fio

import (
	"errors"
	"io"

	"golang.org/x/exp/mmap"
)

var ErrReadOnlyVolume = errors.New("mmap volume is read only")

// MMap 内存映射 IO，只读
type MMap struct {
	readerAt *mmap.ReaderAt
	offset   int64
}

func NewMMapIOManager(fileName string) (*MMap, error) {
	readerAt, err := mmap.Open(fileName)
	if err != nil {
		return nil, err
	}
	return &MMap{readerAt: readerAt}, nil
}

func (mmap *MMap) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	// 空文件的 ReaderAt 不持有映射，不能直接调用 ReadAt
	if mmap.offset >= int64(mmap.readerAt.Len()) {
		return 0, io.EOF
	}
	n, err := mmap.readerAt.ReadAt(b, mmap.offset)
	mmap.offset += int64(n)
	return n, err
}

func (mmap *MMap) Write(b []byte) (int, error) {
	return 0, ErrReadOnlyVolume
}

func (mmap *MMap) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = mmap.offset + offset
	case io.SeekEnd:
		abs = int64(mmap.readerAt.Len()) + offset
	default:
		return 0, errors.New("mmap: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("mmap: negative position")
	}
	mmap.offset = abs
	return abs, nil
}

func (mmap *MMap) Sync() error {
	return nil
}

func (mmap *MMap) Close() error {
	return mmap.readerAt.Close()
}

func (mmap *MMap) Size() (int64, error) {
	return int64(mmap.readerAt.Len()), nil
}

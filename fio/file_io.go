package fio

import (
	"os"

	"github.com/spf13/afero"
)

// 标准文件 IO
type FileIO struct {
	fd afero.File
}

func NewFileIOManager(fs afero.Fs, fileName string, flag int, perm os.FileMode) (*FileIO, error) {
	fd, err := fs.OpenFile(fileName, flag, perm)
	if err != nil {
		return nil, err
	}
	return &FileIO{fd: fd}, nil
}

func (fio *FileIO) Read(b []byte) (int, error) {
	return fio.fd.Read(b)
}

func (fio *FileIO) Write(b []byte) (int, error) {
	return fio.fd.Write(b)
}

func (fio *FileIO) Seek(offset int64, whence int) (int64, error) {
	return fio.fd.Seek(offset, whence)
}

func (fio *FileIO) Sync() error {
	return fio.fd.Sync()
}

func (fio *FileIO) Close() error {
	return fio.fd.Close()
}

func (fio *FileIO) Size() (int64, error) {
	stat, err := fio.fd.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

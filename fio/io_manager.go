package fio

import (
	"os"

	"github.com/spf13/afero"
)

const DataFilePerm = 0644

type FileIOType = byte

const (
	// 标准文件 IO
	StandardIO FileIOType = iota

	// 内存文件映射，只用于只读卷
	MemoryMap
)

// IO 管理接口，可以支持不同的 IO 类型
type IOManager interface {
	// 从当前游标读取数据
	Read([]byte) (int, error)

	// 写入字节流到文件中
	Write([]byte) (int, error)

	// 移动游标
	Seek(offset int64, whence int) (int64, error)

	// 持久化数据
	Sync() error

	// 关闭文件
	Close() error

	// 获取文件大小
	Size() (int64, error)
}

// 按 flag 打开卷文件。只读打开且 fs 为本地文件系统时才会使用 MemoryMap
func NewIOManager(fs afero.Fs, fileName string, flag int, perm os.FileMode, ioType FileIOType) (IOManager, error) {
	switch ioType {
	case StandardIO:
		return NewFileIOManager(fs, fileName, flag, perm)
	case MemoryMap:
		if flag != os.O_RDONLY || !isOsFs(fs) {
			return NewFileIOManager(fs, fileName, flag, perm)
		}
		return NewMMapIOManager(fileName)
	default:
		panic("unsupported io type")
	}
}

func isOsFs(fs afero.Fs) bool {
	_, ok := fs.(*afero.OsFs)
	return ok
}

package splitfile_go

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"splitfile-go/fio"
)

type Options struct {
	// 卷文件所在的文件系统
	Fs afero.Fs

	// 卷文件 IO 类型
	IOType fio.FileIOType

	// 新建卷文件的权限
	FilePerm os.FileMode

	// 日志
	Logger zerolog.Logger
}

var DefaultOptions = Options{
	Fs:       afero.NewOsFs(),
	IOType:   fio.StandardIO,
	FilePerm: fio.DataFilePerm,
	Logger:   zerolog.Nop(),
}

func (opts Options) withDefaults() Options {
	if opts.Fs == nil {
		opts.Fs = DefaultOptions.Fs
	}
	if opts.FilePerm == 0 {
		opts.FilePerm = DefaultOptions.FilePerm
	}
	return opts
}

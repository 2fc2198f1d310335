package data

import (
	"io"
	"os"
	"strconv"

	"github.com/spf13/afero"

	"splitfile-go/fio"
)

// 卷游标状态
type VolumeState = byte

const (
	// 真实游标与 Pos 一致
	Synced VolumeState = iota

	// 下次访问前需要把游标移回 0
	NeedsReset
)

// 卷文件
type Volume struct {
	Index     int           // 卷序号，从 1 开始
	Pos       int64         // 卷内游标
	State     VolumeState   // 游标状态
	IOManager fio.IOManager // io 读写管理
}

// 根据基础路径和序号得到卷文件名，第一卷就是基础路径本身
func VolumeName(base string, index int) string {
	if index == 1 {
		return base
	}
	return base + "." + strconv.Itoa(index)
}

// 打开卷文件
func OpenVolume(fs afero.Fs, base string, index int, flag int, perm os.FileMode, ioType fio.FileIOType) (*Volume, error) {
	ioManager, err := fio.NewIOManager(fs, VolumeName(base, index), flag, perm, ioType)
	if err != nil {
		return nil, err
	}
	return &Volume{
		Index:     index,
		IOManager: ioManager,
	}, nil
}

// 卷文件是否存在于磁盘上
func VolumeExists(fs afero.Fs, base string, index int) bool {
	fi, err := fs.Stat(VolumeName(base, index))
	return err == nil && fi.Mode().IsRegular()
}

// 找到基础路径下所有连续存在的卷文件
func DiscoverVolumes(fs afero.Fs, base string) []string {
	var names []string
	for i := 1; VolumeExists(fs, base, i); i++ {
		names = append(names, VolumeName(base, i))
	}
	return names
}

// 如有需要，把真实游标移回卷首
func (v *Volume) CheckReset() error {
	if v.State != NeedsReset {
		return nil
	}
	pos, err := v.IOManager.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	v.Pos = pos
	v.State = Synced
	return nil
}

// 读取数据直到 buf 填满或卷读完，到达卷尾不算错误
func (v *Volume) Read(buf []byte) (int, error) {
	n, err := io.ReadFull(v.IOManager, buf)
	v.Pos += int64(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

func (v *Volume) Write(buf []byte) (int, error) {
	n, err := v.IOManager.Write(buf)
	v.Pos += int64(n)
	return n, err
}

// 移动真实游标，并同步 Pos
func (v *Volume) Seek(offset int64, whence int) (int64, error) {
	pos, err := v.IOManager.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	v.Pos = pos
	return pos, nil
}

// 持久化当前卷
func (v *Volume) Sync() error {
	return v.IOManager.Sync()
}

func (v *Volume) Close() error {
	return v.IOManager.Close()
}

// 磁盘上的卷大小，不移动游标
func (v *Volume) Size() (int64, error) {
	return v.IOManager.Size()
}

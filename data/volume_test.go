package data

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"splitfile-go/fio"
)

func TestVolumeName(t *testing.T) {
	assert.Equal(t, "/tmp/archive.tar", VolumeName("/tmp/archive.tar", 1))
	assert.Equal(t, "/tmp/archive.tar.2", VolumeName("/tmp/archive.tar", 2))
	assert.Equal(t, "/tmp/archive.tar.10", VolumeName("/tmp/archive.tar", 10))
}

func TestDiscoverVolumes(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Empty(t, DiscoverVolumes(fs, "/vol"))

	for _, name := range []string{"/vol", "/vol.2", "/vol.3", "/vol.5"} {
		assert.Nil(t, afero.WriteFile(fs, name, []byte("x"), fio.DataFilePerm))
	}
	// /vol.4 缺失，发现到此为止
	assert.Equal(t, []string{"/vol", "/vol.2", "/vol.3"}, DiscoverVolumes(fs, "/vol"))

	assert.True(t, VolumeExists(fs, "/vol", 5))
	assert.False(t, VolumeExists(fs, "/vol", 4))

	// 目录不算卷文件
	assert.Nil(t, fs.Mkdir("/dir.2", 0755))
	assert.Nil(t, afero.WriteFile(fs, "/dir", []byte("x"), fio.DataFilePerm))
	assert.Equal(t, []string{"/dir"}, DiscoverVolumes(fs, "/dir"))
}

func TestVolume_ReadWriteReset(t *testing.T) {
	fs := afero.NewMemMapFs()
	v, err := OpenVolume(fs, "/vol", 2, os.O_RDWR|os.O_CREATE, fio.DataFilePerm, fio.StandardIO)
	assert.Nil(t, err)
	defer v.Close()
	assert.Equal(t, 2, v.Index)

	exists, err := afero.Exists(fs, "/vol.2")
	assert.Nil(t, err)
	assert.True(t, exists)

	n, err := v.Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), v.Pos)

	// 未标记时 CheckReset 不移动游标
	assert.Nil(t, v.CheckReset())
	assert.Equal(t, int64(5), v.Pos)

	v.State = NeedsReset
	assert.Nil(t, v.CheckReset())
	assert.Equal(t, Synced, v.State)
	assert.Equal(t, int64(0), v.Pos)

	buf := make([]byte, 8)
	n, err = v.Read(buf)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), buf[:n])
	assert.Equal(t, int64(5), v.Pos)

	pos, err := v.Seek(0, io.SeekEnd)
	assert.Nil(t, err)
	assert.Equal(t, int64(5), pos)
	assert.Equal(t, int64(5), v.Pos)

	size, err := v.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(5), size)
	assert.Nil(t, v.Sync())
}

func TestOpenVolume_NotExist(t *testing.T) {
	_, err := OpenVolume(afero.NewMemMapFs(), "/missing", 1, os.O_RDONLY, fio.DataFilePerm, fio.StandardIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileMeta_Encode(t *testing.T) {
	fm := &FileMeta{VolSize: 64 << 20, Created: 1700000000}
	got, err := DecodeFileMeta(fm.Encode())
	assert.Nil(t, err)
	assert.Equal(t, fm, got)

	_, err = DecodeFileMeta(nil)
	assert.Equal(t, ErrInvalidFileMeta, err)
}

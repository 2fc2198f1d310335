package splitfile_go

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitfile-go/utils"
)

func TestOpenOptions_VolumeFlag(t *testing.T) {
	const invalid = -1

	tests := []struct {
		name  string
		opts  *OpenOptions
		first int
		cont  int
	}{
		{"read", NewOpenOptions().Read(true), os.O_RDONLY, os.O_RDONLY},
		{"write", NewOpenOptions().Write(true), os.O_WRONLY, os.O_WRONLY | os.O_CREATE},
		{"read write", NewOpenOptions().Read(true).Write(true), os.O_RDWR, os.O_RDWR | os.O_CREATE},
		{"append", NewOpenOptions().Append(true), invalid, os.O_WRONLY | os.O_CREATE},
		{"read append", NewOpenOptions().Read(true).Append(true), os.O_RDONLY, os.O_RDWR | os.O_CREATE},
		{"write append", NewOpenOptions().Write(true).Append(true), os.O_WRONLY, os.O_WRONLY | os.O_CREATE},
		{"write truncate", NewOpenOptions().Write(true).Truncate(true), os.O_WRONLY | os.O_TRUNC, os.O_WRONLY | os.O_CREATE},
		{"write create", NewOpenOptions().Write(true).Create(true), os.O_WRONLY | os.O_CREATE, os.O_WRONLY | os.O_CREATE},
		{"write create new", NewOpenOptions().Write(true).CreateNew(true), os.O_WRONLY | os.O_CREATE | os.O_EXCL, os.O_WRONLY | os.O_CREATE},
		{"read write create truncate", NewOpenOptions().Read(true).Write(true).Create(true).Truncate(true),
			os.O_RDWR | os.O_CREATE | os.O_TRUNC, os.O_RDWR | os.O_CREATE},
		{"read append truncate", NewOpenOptions().Read(true).Append(true).Truncate(true), invalid, os.O_RDWR | os.O_CREATE},
		{"read truncate", NewOpenOptions().Read(true).Truncate(true), invalid, os.O_RDONLY},
		{"read create", NewOpenOptions().Read(true).Create(true), invalid, invalid},
		{"read create new", NewOpenOptions().Read(true).CreateNew(true), invalid, invalid},
		{"none", NewOpenOptions(), invalid, invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, c := range []struct {
				isFirst bool
				want    int
			}{{true, tt.first}, {false, tt.cont}} {
				flag, err := tt.opts.volumeFlag(c.isFirst)
				if c.want == invalid {
					assert.ErrorIs(t, err, ErrInvalidOpenMode, "isFirst=%v", c.isFirst)
					continue
				}
				assert.Nil(t, err, "isFirst=%v", c.isFirst)
				assert.Equal(t, c.want, flag, "isFirst=%v", c.isFirst)
				if !c.isFirst {
					assert.Zero(t, flag&(os.O_TRUNC|os.O_EXCL|os.O_APPEND))
				}
			}
		})
	}
}

func TestOpenOptions_FirstOpenToken(t *testing.T) {
	first := &firstOpen{}
	assert.True(t, first.take())
	assert.False(t, first.take())
	assert.False(t, first.take())
}

func TestOpenOptions_ReadAppendWritesDiscoveredVolume(t *testing.T) {
	path := tempBase(t)
	writeSplitFile(t, path, 10, utils.SequenceValue(15))

	// 第一卷只读打开，已存在的第二卷可写且不被截断
	sf, err := NewOpenOptions().Read(true).Append(true).Open(path, 10)
	require.Nil(t, err)
	n, err := sf.Write([]byte("xy"))
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	assert.Nil(t, sf.Close())

	assert.Equal(t, []int64{10, 7}, volumeSizes(t, path))

	sf, err = Open(path, 10)
	require.Nil(t, err)
	defer sf.Close()
	got := make([]byte, 32)
	n, err = sf.Read(got)
	assert.Nil(t, err)
	assert.Equal(t, append(utils.SequenceValue(15), 'x', 'y'), got[:n])
}

package benchmark

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	splitfile "splitfile-go"
	"splitfile-go/fio"
	"splitfile-go/utils"
)

const (
	benchVolumeSize = 4 * 1024 * 1024
	benchChunkSize  = 4 * 1024
	benchFileSize   = 64 * 1024 * 1024
)

var dir string

// 初始化基准测试目录
func init() {
	var err error
	dir, err = os.MkdirTemp("", "splitfile-go-bench")
	if err != nil {
		panic(fmt.Sprintf("failed to make directory, %v", err))
	}
}

// 准备一个写满 benchFileSize 的分卷文件
func prepare(b *testing.B, name string) string {
	path := filepath.Join(dir, name)
	sf, err := splitfile.Create(path, benchVolumeSize)
	assert.Nil(b, err)
	chunk := utils.RandomValue(benchChunkSize)
	for written := 0; written < benchFileSize; written += len(chunk) {
		_, err := sf.Write(chunk)
		assert.Nil(b, err)
	}
	assert.Nil(b, sf.Close())
	return path
}

func Benchmark_Write(b *testing.B) {
	sf, err := splitfile.Create(filepath.Join(dir, "write"), benchVolumeSize)
	assert.Nil(b, err)
	defer sf.Close()

	chunk := utils.RandomValue(benchChunkSize)
	b.SetBytes(benchChunkSize)
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := sf.Write(chunk)
		assert.Nil(b, err)
	}
}

func benchmarkRead(b *testing.B, ioType fio.FileIOType) {
	path := prepare(b, fmt.Sprintf("read-%d", ioType))
	opts := splitfile.DefaultOptions
	opts.IOType = ioType
	sf, err := splitfile.NewOpenOptions().Read(true).WithOptions(opts).Open(path, benchVolumeSize)
	assert.Nil(b, err)
	defer sf.Close()

	buf := make([]byte, benchChunkSize)
	b.SetBytes(benchChunkSize)
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := sf.Read(buf); err == io.EOF {
			_, err = sf.Seek(0, io.SeekStart)
			assert.Nil(b, err)
		} else if err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Read(b *testing.B) {
	benchmarkRead(b, fio.StandardIO)
}

func Benchmark_ReadMMap(b *testing.B) {
	benchmarkRead(b, fio.MemoryMap)
}

// 随机定位后读取一小段，跨卷定位需要重置后续卷
func Benchmark_SeekRead(b *testing.B) {
	path := prepare(b, "seek")
	sf, err := splitfile.Open(path, benchVolumeSize)
	assert.Nil(b, err)
	defer sf.Close()

	buf := make([]byte, 128)
	b.ResetTimer()
	b.ReportAllocs()

	r := rand.New(rand.NewSource(time.Now().Unix()))
	for i := 0; i < b.N; i++ {
		_, err := sf.Seek(r.Int63n(benchFileSize), io.SeekStart)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := sf.Read(buf); err != nil && err != io.EOF {
			b.Fatal(err)
		}
	}
}

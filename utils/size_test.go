package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	size, err := ParseSize("64MB")
	assert.Nil(t, err)
	assert.Equal(t, int64(64<<20), size)

	size, err = ParseSize("4096")
	assert.Nil(t, err)
	assert.Equal(t, int64(4096), size)

	size, err = ParseSize("15b")
	assert.Nil(t, err)
	assert.Equal(t, int64(15), size)

	_, err = ParseSize("0")
	assert.Equal(t, ErrSizeNotPositive, err)

	_, err = ParseSize("lots")
	assert.NotNil(t, err)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "1.0 KiB", HumanSize(1024))
	assert.Equal(t, "64 MiB", HumanSize(64<<20))
}

func TestSequenceValue(t *testing.T) {
	b := SequenceValue(300)
	assert.Equal(t, byte(0), b[0])
	assert.Equal(t, byte(255), b[255])
	assert.Equal(t, byte(43), b[299])
	assert.Len(t, RandomValue(16), 16)
}

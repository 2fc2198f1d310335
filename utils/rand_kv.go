package utils

import (
	"fmt"
	"math/rand"
	"time"
)

var (
	randStr = rand.New(rand.NewSource(time.Now().Unix()))
	letters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
)

// 获取测试使用的文件名
func GetTestName(i int) string {
	return fmt.Sprintf("splitfile-test-%09d", i)
}

// 生成随机内容，用于测试
func RandomValue(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[randStr.Intn(len(letters))]
	}
	return b
}

// 生成 0, 1, 2 ... 循环的内容，便于定位出错的偏移
func SequenceValue(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

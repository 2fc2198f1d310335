package index

import (
	"bytes"
	"sort"

	"github.com/google/btree"

	"splitfile-go/data"
)

// 分卷文件目录：文件名到元数据的映射。Put 和 Delete 返回索引是否更新成功
type Indexer interface {
	Put(name []byte, meta *data.FileMeta) bool
	Get(name []byte) *data.FileMeta
	Delete(name []byte) bool
	Size() int
	Iterator(reverse bool) Iterator
	Close() error
}

type IndexType = byte

const (
	// BTree 索引
	Btree IndexType = iota + 1

	// 自适应基数树索引
	ART

	// B+ 树索引，持久化到磁盘
	BPTree
)

// 初始化目录索引，BPTree 需要 dirPath
func NewIndexer(typ IndexType, dirPath string) (Indexer, error) {
	switch typ {
	case Btree:
		return NewBTree(), nil
	case ART:
		return NewART(), nil
	case BPTree:
		return NewBPlusTree(dirPath)
	default:
		panic("unsupported index type")
	}
}

type Item struct {
	name []byte
	meta *data.FileMeta
}

func (ai *Item) Less(bi btree.Item) bool {
	return bytes.Compare(ai.name, bi.(*Item).name) == -1
}

// 按文件名有序遍历目录索引。Seek 定位到第一个不小于 name 的条目，反向时为不大于
type Iterator interface {
	Rewind()
	Seek(name []byte)
	Next()
	Valid() bool
	Key() []byte
	Value() *data.FileMeta
	Close()
}

// 索引条目的有序快照，三种索引共用
type itemIterator struct {
	index   int
	reverse bool
	items   []*Item
}

func (it *itemIterator) Rewind() {
	it.index = 0
}

func (it *itemIterator) Seek(name []byte) {
	it.index = sort.Search(len(it.items), func(i int) bool {
		cmp := bytes.Compare(it.items[i].name, name)
		if it.reverse {
			return cmp <= 0
		}
		return cmp >= 0
	})
}

func (it *itemIterator) Next() {
	it.index++
}

func (it *itemIterator) Valid() bool {
	return it.index < len(it.items)
}

func (it *itemIterator) Key() []byte {
	return it.items[it.index].name
}

func (it *itemIterator) Value() *data.FileMeta {
	return it.items[it.index].meta
}

func (it *itemIterator) Close() {
	it.items = nil
}

package index

import (
	"sync"

	"github.com/google/btree"

	"splitfile-go/data"
)

// 基于 google/btree 的内存目录索引
type BTree struct {
	tree *btree.BTree
	lock *sync.RWMutex
}

func NewBTree() *BTree {
	return &BTree{
		tree: btree.New(32),
		lock: new(sync.RWMutex),
	}
}

func (bt *BTree) Put(name []byte, meta *data.FileMeta) bool {
	it := &Item{name: name, meta: meta}
	bt.lock.Lock()
	bt.tree.ReplaceOrInsert(it)
	bt.lock.Unlock()
	return true
}

func (bt *BTree) Get(name []byte) *data.FileMeta {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	btreeItem := bt.tree.Get(&Item{name: name})
	if btreeItem == nil {
		return nil
	}
	return btreeItem.(*Item).meta
}

func (bt *BTree) Delete(name []byte) bool {
	bt.lock.Lock()
	oldItem := bt.tree.Delete(&Item{name: name})
	bt.lock.Unlock()
	return oldItem != nil
}

func (bt *BTree) Size() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.tree.Len()
}

func (bt *BTree) Iterator(reverse bool) Iterator {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return newBTreeIterator(bt.tree, reverse)
}

func (bt *BTree) Close() error {
	return nil
}

func newBTreeIterator(tree *btree.BTree, reverse bool) *itemIterator {
	idx := 0
	items := make([]*Item, tree.Len())

	saveItem := func(it btree.Item) bool {
		items[idx] = it.(*Item)
		idx++
		return true
	}
	if reverse {
		tree.Descend(saveItem)
	} else {
		tree.Ascend(saveItem)
	}

	return &itemIterator{
		reverse: reverse,
		items:   items,
	}
}

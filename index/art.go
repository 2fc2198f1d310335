package index

import (
	"sync"

	goart "github.com/plar/go-adaptive-radix-tree"

	"splitfile-go/data"
)

// 自适应基数树目录索引
type AdaptiveRadixTree struct {
	tree goart.Tree
	lock *sync.RWMutex
}

func NewART() *AdaptiveRadixTree {
	return &AdaptiveRadixTree{
		tree: goart.New(),
		lock: new(sync.RWMutex),
	}
}

func (art *AdaptiveRadixTree) Put(name []byte, meta *data.FileMeta) bool {
	art.lock.Lock()
	art.tree.Insert(name, meta)
	art.lock.Unlock()
	return true
}

func (art *AdaptiveRadixTree) Get(name []byte) *data.FileMeta {
	art.lock.RLock()
	defer art.lock.RUnlock()
	v, found := art.tree.Search(name)
	if !found {
		return nil
	}
	return v.(*data.FileMeta)
}

func (art *AdaptiveRadixTree) Delete(name []byte) bool {
	art.lock.Lock()
	_, ok := art.tree.Delete(name)
	art.lock.Unlock()
	return ok
}

func (art *AdaptiveRadixTree) Size() int {
	art.lock.RLock()
	size := art.tree.Size()
	art.lock.RUnlock()
	return size
}

func (art *AdaptiveRadixTree) Iterator(reverse bool) Iterator {
	art.lock.RLock()
	defer art.lock.RUnlock()
	return newARTIterator(art.tree, reverse)
}

func (art *AdaptiveRadixTree) Close() error {
	return nil
}

func newARTIterator(tree goart.Tree, reverse bool) *itemIterator {
	idx := 0
	if reverse {
		idx = tree.Size() - 1
	}
	items := make([]*Item, tree.Size())

	// ForEach 按 key 升序遍历，反向时从数组尾部开始填
	saveItem := func(node goart.Node) bool {
		items[idx] = &Item{
			name: node.Key(),
			meta: node.Value().(*data.FileMeta),
		}
		if reverse {
			idx--
		} else {
			idx++
		}
		return true
	}
	tree.ForEach(saveItem)

	return &itemIterator{
		reverse: reverse,
		items:   items,
	}
}

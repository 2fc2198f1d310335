package index

import (
	"path/filepath"

	"go.etcd.io/bbolt"

	"splitfile-go/data"
)

const BPTreeIndexFileName = "catalog-index"

var indexBucketName = []byte("splitfile-catalog")

// B+ 树目录索引，数据持久化在 bbolt 文件中
type BPlusTree struct {
	tree *bbolt.DB
}

func NewBPlusTree(dirPath string) (*BPlusTree, error) {
	bptree, err := bbolt.Open(filepath.Join(dirPath, BPTreeIndexFileName), 0644, nil)
	if err != nil {
		return nil, err
	}

	// 创建对应的 bucket
	if err := bptree.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexBucketName)
		return err
	}); err != nil {
		_ = bptree.Close()
		return nil, err
	}
	return &BPlusTree{tree: bptree}, nil
}

func (bpt *BPlusTree) Put(name []byte, meta *data.FileMeta) bool {
	if err := bpt.tree.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(indexBucketName).Put(name, meta.Encode())
	}); err != nil {
		return false
	}
	return true
}

func (bpt *BPlusTree) Get(name []byte) *data.FileMeta {
	var meta *data.FileMeta
	_ = bpt.tree.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(indexBucketName).Get(name)
		if len(value) == 0 {
			return nil
		}
		var err error
		meta, err = data.DecodeFileMeta(value)
		return err
	})
	return meta
}

func (bpt *BPlusTree) Delete(name []byte) bool {
	var ok bool
	if err := bpt.tree.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(indexBucketName)
		if value := bucket.Get(name); len(value) != 0 {
			ok = true
			return bucket.Delete(name)
		}
		return nil
	}); err != nil {
		return false
	}
	return ok
}

func (bpt *BPlusTree) Size() int {
	var size int
	_ = bpt.tree.View(func(tx *bbolt.Tx) error {
		size = tx.Bucket(indexBucketName).Stats().KeyN
		return nil
	})
	return size
}

// 在一个只读事务中把所有条目取出，迭代器不持有事务
func (bpt *BPlusTree) Iterator(reverse bool) Iterator {
	var items []*Item
	_ = bpt.tree.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(indexBucketName).Cursor()
		save := func(k, v []byte) {
			meta, err := data.DecodeFileMeta(v)
			if err != nil {
				return
			}
			// bbolt 返回的切片只在事务内有效
			name := make([]byte, len(k))
			copy(name, k)
			items = append(items, &Item{name: name, meta: meta})
		}
		if reverse {
			for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
				save(k, v)
			}
		} else {
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				save(k, v)
			}
		}
		return nil
	})
	return &itemIterator{reverse: reverse, items: items}
}

func (bpt *BPlusTree) Close() error {
	return bpt.tree.Close()
}

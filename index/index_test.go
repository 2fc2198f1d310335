package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"splitfile-go/data"
)

func newTestIndexers(t *testing.T) map[string]Indexer {
	bpt, err := NewIndexer(BPTree, t.TempDir())
	assert.Nil(t, err)
	t.Cleanup(func() { _ = bpt.Close() })

	bt, err := NewIndexer(Btree, "")
	assert.Nil(t, err)
	art, err := NewIndexer(ART, "")
	assert.Nil(t, err)

	return map[string]Indexer{"btree": bt, "art": art, "bptree": bpt}
}

func TestIndexer_PutGetDelete(t *testing.T) {
	for name, idx := range newTestIndexers(t) {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, idx.Get([]byte("missing")))

			assert.True(t, idx.Put([]byte("a.tar"), &data.FileMeta{VolSize: 15, Created: 1}))
			assert.True(t, idx.Put([]byte("b.tar"), &data.FileMeta{VolSize: 30, Created: 2}))
			assert.Equal(t, 2, idx.Size())

			meta := idx.Get([]byte("a.tar"))
			assert.NotNil(t, meta)
			assert.Equal(t, int64(15), meta.VolSize)

			// 覆盖已有的文件名
			assert.True(t, idx.Put([]byte("a.tar"), &data.FileMeta{VolSize: 45, Created: 3}))
			assert.Equal(t, int64(45), idx.Get([]byte("a.tar")).VolSize)
			assert.Equal(t, 2, idx.Size())

			assert.True(t, idx.Delete([]byte("a.tar")))
			assert.False(t, idx.Delete([]byte("a.tar")))
			assert.Nil(t, idx.Get([]byte("a.tar")))
			assert.Equal(t, 1, idx.Size())
		})
	}
}

func TestIndexer_Iterator(t *testing.T) {
	for name, idx := range newTestIndexers(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"ccde", "acee", "bbcd", "bbef"} {
				idx.Put([]byte(key), &data.FileMeta{VolSize: 10})
			}

			var keys []string
			iter := idx.Iterator(false)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, string(iter.Key()))
				assert.Equal(t, int64(10), iter.Value().VolSize)
			}
			iter.Close()
			assert.Equal(t, []string{"acee", "bbcd", "bbef", "ccde"}, keys)

			keys = nil
			iter = idx.Iterator(true)
			for iter.Seek([]byte("bbz")); iter.Valid(); iter.Next() {
				keys = append(keys, string(iter.Key()))
			}
			iter.Close()
			assert.Equal(t, []string{"bbef", "bbcd", "acee"}, keys)

			iter = idx.Iterator(false)
			iter.Seek([]byte("bc"))
			assert.True(t, iter.Valid())
			assert.Equal(t, "ccde", string(iter.Key()))
			iter.Close()
		})
	}
}

func TestBPlusTree_Reopen(t *testing.T) {
	dir := t.TempDir()
	bpt, err := NewBPlusTree(dir)
	assert.Nil(t, err)
	assert.True(t, bpt.Put([]byte("archive"), &data.FileMeta{VolSize: 1 << 20, Created: 7}))
	assert.Nil(t, bpt.Close())

	bpt, err = NewBPlusTree(dir)
	assert.Nil(t, err)
	defer bpt.Close()
	assert.Equal(t, &data.FileMeta{VolSize: 1 << 20, Created: 7}, bpt.Get([]byte("archive")))
	assert.Equal(t, 1, bpt.Size())
}

package keydir

import (
	"math"

	"github.com/google/btree"
)

const defaultDegree = 32

// Keydir maps active record ids to handles.
// H is a file offset for the file store and a record reference in memory.
type Keydir[H any] struct {
	tree *btree.BTreeG[entry[H]]
}

type entry[H any] struct {
	id     int32
	handle H
}

func lessEntry[H any](a, b entry[H]) bool {
	return a.id < b.id
}

func New[H any](degree int) *Keydir[H] {
	if degree <= 0 {
		degree = defaultDegree
	}
	return &Keydir[H]{
		tree: btree.NewG[entry[H]](degree, lessEntry[H]),
	}
}

// Put return false if the id was already present, the handle is replaced anyway
func (kd *Keydir[H]) Put(id int32, handle H) bool {
	_, replaced := kd.tree.ReplaceOrInsert(entry[H]{id: id, handle: handle})
	return !replaced
}

func (kd *Keydir[H]) Get(id int32) (H, bool) {
	item, ok := kd.tree.Get(entry[H]{id: id})
	return item.handle, ok
}

func (kd *Keydir[H]) Delete(id int32) bool {
	_, ok := kd.tree.Delete(entry[H]{id: id})
	return ok
}

func (kd *Keydir[H]) Size() int {
	return kd.tree.Len()
}

// MaxID return the greatest id, 0 when empty
func (kd *Keydir[H]) MaxID() int32 {
	item, ok := kd.tree.Max()
	if !ok {
		return 0
	}
	return item.id
}

// NextID return max(id) + 1, or 1 if empty.
// ok is false when max(id) is already math.MaxInt32.
func (kd *Keydir[H]) NextID() (id int32, ok bool) {
	maxID := kd.MaxID()
	if maxID == math.MaxInt32 {
		return 0, false
	}
	return maxID + 1, true
}

// Ascend calls fn in id order until it returns false
func (kd *Keydir[H]) Ascend(fn func(id int32, handle H) bool) {
	kd.tree.Ascend(func(item entry[H]) bool {
		return fn(item.id, item.handle)
	})
}

func (kd *Keydir[H]) Clear() {
	kd.tree.Clear(false)
}

package keydir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeydir_Put(t *testing.T) {
	kd := New[int64](32)

	assert.True(t, kd.Put(1, 0))
	assert.True(t, kd.Put(2, 278))
	assert.False(t, kd.Put(1, 556))

	off, ok := kd.Get(1)
	assert.True(t, ok)
	assert.Equal(t, int64(556), off)
	assert.Equal(t, 2, kd.Size())
}

func TestKeydir_Delete(t *testing.T) {
	kd := New[int64](0)

	kd.Put(5, 0)
	assert.True(t, kd.Delete(5))
	assert.False(t, kd.Delete(5))

	_, ok := kd.Get(5)
	assert.False(t, ok)
}

func TestKeydir_NextID(t *testing.T) {
	kd := New[int64](4)
	assert.Equal(t, int32(0), kd.MaxID())
	next, ok := kd.NextID()
	assert.True(t, ok)
	assert.Equal(t, int32(1), next)

	for _, id := range []int32{3, 9, 4} {
		kd.Put(id, int64(id))
	}
	next, _ = kd.NextID()
	assert.Equal(t, int32(10), next)

	kd.Delete(9)
	next, _ = kd.NextID()
	assert.Equal(t, int32(5), next)

	kd.Put(math.MaxInt32, 0)
	_, ok = kd.NextID()
	assert.False(t, ok)
}

func TestKeydir_Ascend(t *testing.T) {
	kd := New[string](4)
	for _, id := range []int32{30, 10, 20} {
		kd.Put(id, "x")
	}

	var ids []int32
	kd.Ascend(func(id int32, _ string) bool {
		ids = append(ids, id)
		return id < 20
	})
	assert.Equal(t, []int32{10, 20}, ids)

	kd.Clear()
	assert.Equal(t, 0, kd.Size())
}

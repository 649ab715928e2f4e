package fio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFileIO(t *testing.T) *FileIO {
	fio, err := NewFileIO(filepath.Join(t.TempDir(), "data"))
	assert.Nil(t, err)
	t.Cleanup(func() {
		_ = fio.Close()
	})
	return fio
}

func TestFileIO_Write(t *testing.T) {
	fio := newTestFileIO(t)

	n, err := fio.Write([]byte("hello"), 0)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)

	n, err = fio.Write([]byte("world"), 5)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)

	size, err := fio.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(10), size)
}

func TestFileIO_Read(t *testing.T) {
	fio := newTestFileIO(t)

	_, err := fio.Write([]byte("hello"), 0)
	assert.Nil(t, err)

	// overwrite in place
	_, err = fio.Write([]byte("J"), 0)
	assert.Nil(t, err)

	buf := make([]byte, 5)
	n, err := fio.Read(buf, 0)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "Jello", string(buf))
}

func TestFileIO_Truncate(t *testing.T) {
	fio := newTestFileIO(t)

	_, err := fio.Write([]byte("hello world"), 0)
	assert.Nil(t, err)

	assert.Nil(t, fio.Truncate(5))
	size, err := fio.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(5), size)
}

func TestFileIO_Sync(t *testing.T) {
	fio := newTestFileIO(t)

	_, err := fio.Write([]byte("hello"), 0)
	assert.Nil(t, err)
	assert.Nil(t, fio.Sync())
}

func TestNewFlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")

	first := NewFlock(path)
	ok, err := first.TryLock()
	assert.Nil(t, err)
	assert.True(t, ok)
	defer first.Unlock()

	second := NewFlock(path)
	ok, err = second.TryLock()
	assert.Nil(t, err)
	assert.False(t, ok)
}

package model

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/cqkv/recstore/fio"
	"github.com/stretchr/testify/assert"
)

const testSlotSize = 8

func openTestSlotFile(t *testing.T) *SlotFile {
	ioManager, err := fio.NewFileIO(filepath.Join(t.TempDir(), "slots"))
	assert.Nil(t, err)
	assert.NotNil(t, ioManager)

	slotFile, err := OpenSlotFile(testSlotSize, ioManager)
	assert.Nil(t, err)
	t.Cleanup(func() {
		_ = slotFile.Close()
	})
	return slotFile
}

func TestSlotFile_Append(t *testing.T) {
	slotFile := openTestSlotFile(t)

	off, err := slotFile.Append([]byte("aaaaaaaa"))
	assert.Nil(t, err)
	assert.Equal(t, int64(0), off)

	off, err = slotFile.Append([]byte("bbbbbbbb"))
	assert.Nil(t, err)
	assert.Equal(t, int64(8), off)
	assert.Equal(t, int64(16), slotFile.WriteOffset)
	assert.Equal(t, 2, slotFile.Slots())

	_, err = slotFile.Append([]byte("short"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 2, slotFile.Slots())
}

func TestSlotFile_ReadSlot(t *testing.T) {
	slotFile := openTestSlotFile(t)

	_, err := slotFile.Append([]byte("aaaaaaaa"))
	assert.Nil(t, err)
	_, err = slotFile.Append([]byte("bbbbbbbb"))
	assert.Nil(t, err)

	data, err := slotFile.ReadSlot(8)
	assert.Nil(t, err)
	assert.Equal(t, []byte("bbbbbbbb"), data)

	_, err = slotFile.ReadSlot(16)
	assert.Equal(t, io.EOF, err)
}

func TestSlotFile_Status(t *testing.T) {
	slotFile := openTestSlotFile(t)

	_, err := slotFile.Append([]byte{1, 0, 'x', 'x', 'x', 'x', 'x', 'x'})
	assert.Nil(t, err)

	status, err := slotFile.ReadStatus(0)
	assert.Nil(t, err)
	assert.Equal(t, StatusActive, status)

	assert.Nil(t, slotFile.WriteStatus(0, StatusTombstoned))
	data, err := slotFile.ReadSlot(0)
	assert.Nil(t, err)
	assert.Equal(t, []byte{0, 0, 'x', 'x', 'x', 'x', 'x', 'x'}, data)
}

func TestSlotFile_Truncate(t *testing.T) {
	slotFile := openTestSlotFile(t)

	for i := 0; i < 3; i++ {
		_, err := slotFile.Append([]byte("cccccccc"))
		assert.Nil(t, err)
	}
	assert.Nil(t, slotFile.Truncate(8))
	assert.Equal(t, 1, slotFile.Slots())

	size, err := slotFile.IoManager.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(8), size)
}

func TestOpenSlotFile_ExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots")
	ioManager, err := fio.NewFileIO(path)
	assert.Nil(t, err)
	slotFile, err := OpenSlotFile(testSlotSize, ioManager)
	assert.Nil(t, err)
	_, err = slotFile.Append([]byte("dddddddd"))
	assert.Nil(t, err)
	assert.Nil(t, slotFile.Close())

	ioManager, err = fio.NewFileIO(path)
	assert.Nil(t, err)
	slotFile, err = OpenSlotFile(testSlotSize, ioManager)
	assert.Nil(t, err)
	defer slotFile.Close()
	assert.Equal(t, int64(8), slotFile.WriteOffset)
}

package model

import (
	"encoding/binary"
	"io"

	"github.com/cqkv/recstore/fio"
)

const (
	StatusSize = 2

	StatusTombstoned uint16 = 0
	StatusActive     uint16 = 1
)

// SlotFile is a backing file made of fixed-size slots.
// A slot is addressed by its byte offset.
type SlotFile struct {
	SlotSize    int64
	WriteOffset int64 // end of the last slot
	IoManager   fio.IOManager
}

func OpenSlotFile(slotSize int64, ioManager fio.IOManager) (*SlotFile, error) {
	size, err := ioManager.Size()
	if err != nil {
		return nil, err
	}
	return &SlotFile{
		SlotSize:    slotSize,
		WriteOffset: size,
		IoManager:   ioManager,
	}, nil
}

// Slots return the number of slots, tombstones included
func (sf *SlotFile) Slots() int {
	return int(sf.WriteOffset / sf.SlotSize)
}

func (sf *SlotFile) Sync() error {
	return sf.IoManager.Sync()
}

// Append writes one slot at the end of file and returns its offset
func (sf *SlotFile) Append(slot []byte) (int64, error) {
	offset := sf.WriteOffset
	if err := sf.WriteSlot(offset, slot); err != nil {
		return 0, err
	}
	sf.WriteOffset += sf.SlotSize
	return offset, nil
}

// WriteSlot overwrites the slot at offset
func (sf *SlotFile) WriteSlot(offset int64, slot []byte) error {
	if int64(len(slot)) != sf.SlotSize {
		return io.ErrShortWrite
	}
	_, err := sf.IoManager.Write(slot, offset)
	return err
}

// ReadSlot returns the raw slot at offset, io.EOF past the last slot
func (sf *SlotFile) ReadSlot(offset int64) ([]byte, error) {
	if offset+sf.SlotSize > sf.WriteOffset {
		return nil, io.EOF
	}
	return sf.readNBytes(offset, sf.SlotSize)
}

// ReadStatus reads only the status field of the slot at offset
func (sf *SlotFile) ReadStatus(offset int64) (uint16, error) {
	if offset+sf.SlotSize > sf.WriteOffset {
		return 0, io.EOF
	}
	buf, err := sf.readNBytes(offset, StatusSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// WriteStatus flips the status field and leaves the rest of the slot untouched
func (sf *SlotFile) WriteStatus(offset int64, status uint16) error {
	buf := make([]byte, StatusSize)
	binary.LittleEndian.PutUint16(buf, status)
	_, err := sf.IoManager.Write(buf, offset)
	return err
}

func (sf *SlotFile) Truncate(size int64) error {
	if err := sf.IoManager.Truncate(size); err != nil {
		return err
	}
	sf.WriteOffset = size
	return nil
}

func (sf *SlotFile) Close() error {
	return sf.IoManager.Close()
}

func (sf *SlotFile) readNBytes(offset, n int64) ([]byte, error) {
	buf := make([]byte, n)
	_, err := sf.IoManager.Read(buf, offset)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

package recstore

import (
	"errors"
	"io"

	"github.com/go-kit/log/level"

	"github.com/cqkv/recstore/model"
)

// Purge compacts the data file in a single forward pass and returns the
// number of tombstones removed.
//
// Active slots are copied down to the next compacted offset, then the file is
// truncated. Every handle may move, so the keydir and the indices are rebuilt
// from the compacted file before Purge returns, also when compaction fails.
func (fs *FileStore) Purge() (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return 0, ErrClosed
	}

	removed, err := fs.compact()
	if err != nil {
		// slots may already have moved
		if rerr := fs.loadKeydir(false); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	// offsets changed, cached handles are stale
	if err = fs.loadKeydir(false); err != nil {
		return removed, err
	}
	if err = fs.file.Sync(); err != nil {
		return removed, err
	}

	level.Info(fs.logger).Log("msg", "purged data file", "removed", removed, "slots", fs.file.Slots())
	return removed, nil
}

func (fs *FileStore) compact() (int, error) {
	var (
		removed     int
		writeOffset int64
		slotSize    = fs.file.SlotSize
	)
	for readOffset := int64(0); ; readOffset += slotSize {
		status, err := fs.file.ReadStatus(readOffset)
		if err == io.EOF {
			break
		}
		if err != nil {
			return removed, err
		}
		if status == model.StatusTombstoned {
			removed++
			continue
		}

		if readOffset != writeOffset {
			data, err := fs.file.ReadSlot(readOffset)
			if err != nil {
				return removed, err
			}
			if err = fs.file.WriteSlot(writeOffset, data); err != nil {
				return removed, err
			}
		}
		writeOffset += slotSize
	}

	if writeOffset == fs.file.WriteOffset {
		return removed, nil
	}
	return removed, fs.file.Truncate(writeOffset)
}

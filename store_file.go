package recstore

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/cqkv/recstore/fio"
	"github.com/cqkv/recstore/keydir"
	"github.com/cqkv/recstore/model"
	"github.com/cqkv/recstore/query"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps records in fixed-size slots of one backing file.
// A slot offset is the record handle, it is stable until Purge.
type FileStore struct {
	mu sync.Mutex

	path     string
	file     *model.SlotFile
	fileLock fio.FileLocker

	keydir *keydir.Keydir[int64]
	index  *keydir.IndexSet[int64]

	// slots skipped by scans because they could not be decoded
	corruptSlots int

	options options
	logger  log.Logger
}

// OpenFileStore opens or creates the backing file at path and rebuilds the
// indices from its active slots. Any undecodable slot fails the open.
func OpenFileStore(path string, opts ...Option) (*FileStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ioManagerCreator == nil {
		return nil, fmt.Errorf("recstore: no io manager creator")
	}

	fileLock := fio.NewFlock(path)
	ok, err := fileLock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFileIsUsing
	}

	fs := &FileStore{
		path:     path,
		fileLock: fileLock,
		keydir:   keydir.New[int64](o.indexDegree),
		index:    keydir.NewIndexSet[int64](o.indexDegree),
		options:  o,
		logger:   log.With(o.logger, "backend", "file", "path", path),
	}
	if err = fs.open(); err != nil {
		if fs.file != nil {
			_ = fs.file.Close()
		}
		_ = fileLock.Unlock()
		return nil, err
	}

	level.Info(fs.logger).Log("msg", "opened data file", "slots", fs.file.Slots(), "records", fs.keydir.Size())
	return fs, nil
}

func (fs *FileStore) open() error {
	ioManager, err := fs.options.ioManagerCreator(fs.path)
	if err != nil {
		return err
	}
	slotSize := fs.options.codec.SlotSize()
	fs.file, err = model.OpenSlotFile(slotSize, ioManager)
	if err != nil {
		_ = ioManager.Close()
		return err
	}
	if rem := fs.file.WriteOffset % slotSize; rem != 0 {
		return &CorruptDataError{
			Offset: fs.file.WriteOffset - rem,
			Err:    fmt.Errorf("trailing %d bytes of a partial slot", rem),
		}
	}
	return fs.loadKeydir(true)
}

// loadKeydir discards the keydir and indices and rebuilds them from the file.
// When strict is false undecodable slots are skipped and counted.
// An active id seen again at a higher offset is tombstoned there.
func (fs *FileStore) loadKeydir(strict bool) error {
	fs.keydir.Clear()
	fs.index.Clear()

	for offset := int64(0); ; offset += fs.file.SlotSize {
		record, err := fs.readRecord(offset)
		if err == io.EOF {
			return nil
		}
		var corrupt *CorruptDataError
		if !strict && errors.As(err, &corrupt) {
			fs.skipCorrupt(offset, err)
			continue
		}
		if err != nil {
			return err
		}
		if record == nil {
			continue
		}
		if _, ok := fs.keydir.Get(record.ID); ok {
			// a compaction stopped halfway leaves the moved copy at the lower offset
			if err = fs.file.WriteStatus(offset, model.StatusTombstoned); err != nil {
				return err
			}
			level.Warn(fs.logger).Log("msg", "tombstone duplicate slot", "offset", offset, "id", record.ID)
			continue
		}
		fs.keydir.Put(record.ID, offset)
		fs.index.Add(&record.Fields, offset)
	}
}

// readRecord decode the slot at offset, a tombstone yields a nil record
func (fs *FileStore) readRecord(offset int64) (*model.Record, error) {
	data, err := fs.file.ReadSlot(offset)
	if err != nil {
		return nil, err
	}
	status, err := fs.options.codec.UnmarshalStatus(data)
	if err != nil {
		return nil, &CorruptDataError{Offset: offset, Err: err}
	}
	if status == model.StatusTombstoned {
		return nil, nil
	}
	record := new(model.Record)
	if err = fs.options.codec.UnmarshalRecord(data, record); err != nil {
		return nil, &CorruptDataError{Offset: offset, Err: err}
	}
	return record, nil
}

// scan calls fn with every active record in offset order until fn returns false.
// Undecodable slots are skipped and counted.
func (fs *FileStore) scan(fn func(offset int64, record *model.Record) (bool, error)) error {
	for offset := int64(0); ; offset += fs.file.SlotSize {
		record, err := fs.readRecord(offset)
		if err == io.EOF {
			return nil
		}
		var corrupt *CorruptDataError
		if errors.As(err, &corrupt) {
			fs.skipCorrupt(offset, err)
			continue
		}
		if err != nil {
			return err
		}
		if record == nil {
			continue
		}
		next, err := fn(offset, record)
		if err != nil || !next {
			return err
		}
	}
}

func (fs *FileStore) skipCorrupt(offset int64, err error) {
	fs.corruptSlots++
	level.Warn(fs.logger).Log("msg", "skip corrupt slot", "offset", offset, "err", err)
}

func (fs *FileStore) Create(fields model.Fields) (int32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return 0, ErrClosed
	}

	fields = prepareFields(fields)
	if err := validateFields(fs.options.validator, &fields); err != nil {
		return 0, err
	}
	id, ok := fs.keydir.NextID()
	if !ok {
		return 0, ErrIDExhausted
	}
	if err := fs.appendRecord(&model.Record{ID: id, Fields: fields}); err != nil {
		return 0, err
	}
	return id, nil
}

func (fs *FileStore) Insert(id int32, fields model.Fields) (int32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return 0, ErrClosed
	}

	fields = prepareFields(fields)
	if err := validateFields(fs.options.validator, &fields); err != nil {
		return 0, err
	}
	if _, ok := fs.keydir.Get(id); ok {
		return 0, &DuplicateIDError{ID: id}
	}
	if err := fs.appendRecord(&model.Record{ID: id, Fields: fields}); err != nil {
		return 0, err
	}
	return id, nil
}

func (fs *FileStore) appendRecord(record *model.Record) error {
	data, err := fs.options.codec.MarshalRecord(record, model.StatusActive)
	if err != nil {
		return err
	}
	offset, err := fs.file.Append(data)
	if err != nil {
		return err
	}
	fs.keydir.Put(record.ID, offset)
	fs.index.Add(&record.Fields, offset)
	return fs.maybeSync()
}

// rewriteRecord overwrites the slot of old in place and re-points its index entries
func (fs *FileStore) rewriteRecord(offset int64, old, record *model.Record) error {
	data, err := fs.options.codec.MarshalRecord(record, model.StatusActive)
	if err != nil {
		return err
	}
	if err = fs.file.WriteSlot(offset, data); err != nil {
		return err
	}
	fs.index.Remove(&old.Fields, offset)
	fs.index.Add(&record.Fields, offset)
	return nil
}

// tombstone flips the slot status and strips the record from keydir and indices
func (fs *FileStore) tombstone(offset int64, record *model.Record) error {
	if err := fs.file.WriteStatus(offset, model.StatusTombstoned); err != nil {
		return err
	}
	fs.keydir.Delete(record.ID)
	fs.index.Remove(&record.Fields, offset)
	return nil
}

func (fs *FileStore) Edit(id int32, fields model.Fields) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return ErrClosed
	}

	fields = prepareFields(fields)
	if err := validateFields(fs.options.validator, &fields); err != nil {
		return err
	}
	offset, ok := fs.keydir.Get(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	old, err := fs.readRecord(offset)
	if err != nil {
		return err
	}
	if old == nil {
		return &NotFoundError{ID: id}
	}
	if err = fs.rewriteRecord(offset, old, &model.Record{ID: id, Fields: fields}); err != nil {
		return err
	}
	return fs.maybeSync()
}

func (fs *FileStore) Remove(id int32) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return false, ErrClosed
	}

	offset, ok := fs.keydir.Get(id)
	if !ok {
		return false, nil
	}
	record, err := fs.readRecord(offset)
	if err != nil {
		return false, err
	}
	if record == nil {
		fs.keydir.Delete(id)
		return false, nil
	}
	if err = fs.tombstone(offset, record); err != nil {
		return false, err
	}
	return true, fs.maybeSync()
}

func (fs *FileStore) DeleteWhere(field, value string) ([]int32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil, ErrClosed
	}

	removed := make([]int32, 0)
	err := fs.scan(func(offset int64, record *model.Record) (bool, error) {
		if !query.MatchField(record, field, value) {
			return true, nil
		}
		if err := fs.tombstone(offset, record); err != nil {
			return false, err
		}
		removed = append(removed, record.ID)
		return true, nil
	})
	if err != nil {
		return removed, err
	}
	return removed, fs.maybeSync()
}

func (fs *FileStore) UpdateWhere(set query.Assignments, where query.Conditions) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return 0, ErrClosed
	}
	if len(set) == 0 {
		return 0, nil
	}

	var updated int
	err := fs.scan(func(offset int64, record *model.Record) (bool, error) {
		if !where.Match(record) {
			return true, nil
		}
		next := *record
		if !set.Apply(&next) {
			return true, nil
		}
		if err := fs.rewriteRecord(offset, record, &next); err != nil {
			return false, err
		}
		updated++
		return true, nil
	})
	if err != nil {
		return updated, err
	}
	return updated, fs.maybeSync()
}

func (fs *FileStore) Select(fields []string, where query.Conditions) ([]model.Record, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil, ErrClosed
	}

	result := make([]model.Record, 0)
	err := fs.scan(func(_ int64, record *model.Record) (bool, error) {
		if where.Match(record) {
			result = append(result, record.Project(fields))
		}
		return true, nil
	})
	return result, err
}

func (fs *FileStore) FindBy(field, value string) ([]model.Record, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil, ErrClosed
	}

	handles, ok := fs.index.Lookup(field, value)
	if !ok {
		return fs.findByField(func(record *model.Record) bool {
			return query.MatchField(record, field, value)
		})
	}
	result := make([]model.Record, 0, len(handles))
	for _, offset := range handles {
		record, err := fs.readRecord(offset)
		var corrupt *CorruptDataError
		if errors.As(err, &corrupt) {
			fs.skipCorrupt(offset, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		if record != nil {
			result = append(result, *record)
		}
	}
	return result, nil
}

// findByField decodes every slot and keeps the active records accepted by predicate
func (fs *FileStore) findByField(predicate func(*model.Record) bool) ([]model.Record, error) {
	result := make([]model.Record, 0)
	err := fs.scan(func(_ int64, record *model.Record) (bool, error) {
		if predicate(record) {
			result = append(result, *record)
		}
		return true, nil
	})
	return result, err
}

func (fs *FileStore) Exists(id int32) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return false, ErrClosed
	}

	_, ok := fs.keydir.Get(id)
	return ok, nil
}

// Stat counts slots, tombstones included
func (fs *FileStore) Stat() (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return 0, ErrClosed
	}
	return fs.file.Slots(), nil
}

// CorruptSlots return how many undecodable slots scans have skipped
func (fs *FileStore) CorruptSlots() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.corruptSlots
}

func (fs *FileStore) Snapshot() (*model.Snapshot, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil, ErrClosed
	}

	records := make([]model.Record, 0, fs.keydir.Size())
	err := fs.scan(func(_ int64, record *model.Record) (bool, error) {
		records = append(records, *record)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return model.NewSnapshot(records), nil
}

// Restore encodes the whole snapshot before it touches the file
func (fs *FileStore) Restore(snapshot *model.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	incoming := snapshot.Records()
	data := make([]byte, 0, int64(len(incoming))*fs.options.codec.SlotSize())
	for i := range incoming {
		slot, err := fs.options.codec.MarshalRecord(&incoming[i], model.StatusActive)
		if err != nil {
			return model.Malformed(err, "record %d cannot be stored", incoming[i].ID)
		}
		data = append(data, slot...)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return ErrClosed
	}

	if err := fs.file.Truncate(0); err != nil {
		return err
	}
	fs.keydir.Clear()
	fs.index.Clear()
	for i := range incoming {
		offset, err := fs.file.Append(data[int64(i)*fs.file.SlotSize : int64(i+1)*fs.file.SlotSize])
		if err != nil {
			return err
		}
		fs.keydir.Put(incoming[i].ID, offset)
		fs.index.Add(&incoming[i].Fields, offset)
	}
	if err := fs.file.Sync(); err != nil {
		return err
	}

	level.Info(fs.logger).Log("msg", "restored records", "records", len(incoming))
	return nil
}

func (fs *FileStore) Sync() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return ErrClosed
	}
	return fs.file.Sync()
}

func (fs *FileStore) maybeSync() error {
	if !fs.options.syncWrites {
		return nil
	}
	return fs.file.Sync()
}

// Close syncs and closes the data file and releases the file lock
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil
	}

	var errs []error
	if err := fs.file.Sync(); err != nil {
		errs = append(errs, err)
	}
	if err := fs.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := fs.fileLock.Unlock(); err != nil {
		errs = append(errs, err)
	}
	fs.file = nil
	return errors.Join(errs...)
}

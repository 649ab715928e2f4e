package recstore

import (
	"slices"
	"sync"

	"github.com/go-kit/log/level"

	"github.com/cqkv/recstore/keydir"
	"github.com/cqkv/recstore/model"
	"github.com/cqkv/recstore/query"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps records in insertion order, indices point at the records directly.
type MemStore struct {
	mu sync.Mutex

	records []*model.Record
	keydir  *keydir.Keydir[*model.Record]
	index   *keydir.IndexSet[*model.Record]
	closed  bool

	options options
}

func NewMemStore(opts ...Option) *MemStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemStore{
		keydir:  keydir.New[*model.Record](o.indexDegree),
		index:   keydir.NewIndexSet[*model.Record](o.indexDegree),
		options: o,
	}
}

func (ms *MemStore) Create(fields model.Fields) (int32, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return 0, ErrClosed
	}

	fields = prepareFields(fields)
	if err := validateFields(ms.options.validator, &fields); err != nil {
		return 0, err
	}
	id, ok := ms.keydir.NextID()
	if !ok {
		return 0, ErrIDExhausted
	}
	ms.add(&model.Record{ID: id, Fields: fields})
	return id, nil
}

func (ms *MemStore) Insert(id int32, fields model.Fields) (int32, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return 0, ErrClosed
	}

	fields = prepareFields(fields)
	if err := validateFields(ms.options.validator, &fields); err != nil {
		return 0, err
	}
	if _, ok := ms.keydir.Get(id); ok {
		return 0, &DuplicateIDError{ID: id}
	}
	ms.add(&model.Record{ID: id, Fields: fields})
	return id, nil
}

func (ms *MemStore) add(record *model.Record) {
	ms.records = append(ms.records, record)
	ms.keydir.Put(record.ID, record)
	ms.index.Add(&record.Fields, record)
}

func (ms *MemStore) Edit(id int32, fields model.Fields) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed
	}

	fields = prepareFields(fields)
	if err := validateFields(ms.options.validator, &fields); err != nil {
		return err
	}
	record, ok := ms.keydir.Get(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	ms.index.Remove(&record.Fields, record)
	record.Fields = fields
	ms.index.Add(&record.Fields, record)
	return nil
}

func (ms *MemStore) Remove(id int32) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return false, ErrClosed
	}

	record, ok := ms.keydir.Get(id)
	if !ok {
		return false, nil
	}
	ms.unlink(record)
	ms.records = slices.DeleteFunc(ms.records, func(r *model.Record) bool {
		return r == record
	})
	return true, nil
}

// unlink drops record from the keydir and indices, the caller removes it from records
func (ms *MemStore) unlink(record *model.Record) {
	ms.keydir.Delete(record.ID)
	ms.index.Remove(&record.Fields, record)
}

func (ms *MemStore) DeleteWhere(field, value string) ([]int32, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return nil, ErrClosed
	}

	removed := make([]int32, 0)
	ms.records = slices.DeleteFunc(ms.records, func(r *model.Record) bool {
		if !query.MatchField(r, field, value) {
			return false
		}
		ms.unlink(r)
		removed = append(removed, r.ID)
		return true
	})
	return removed, nil
}

func (ms *MemStore) UpdateWhere(set query.Assignments, where query.Conditions) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return 0, ErrClosed
	}
	if len(set) == 0 {
		return 0, nil
	}

	var updated int
	for _, record := range ms.records {
		if !where.Match(record) {
			continue
		}
		next := *record
		if !set.Apply(&next) {
			continue
		}
		ms.index.Remove(&record.Fields, record)
		record.Fields = next.Fields
		ms.index.Add(&record.Fields, record)
		updated++
	}
	return updated, nil
}

func (ms *MemStore) Select(fields []string, where query.Conditions) ([]model.Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return nil, ErrClosed
	}

	result := make([]model.Record, 0)
	for _, record := range ms.records {
		if where.Match(record) {
			result = append(result, record.Project(fields))
		}
	}
	return result, nil
}

func (ms *MemStore) FindBy(field, value string) ([]model.Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return nil, ErrClosed
	}

	result := make([]model.Record, 0)
	if handles, ok := ms.index.Lookup(field, value); ok {
		for _, record := range handles {
			result = append(result, *record)
		}
		return result, nil
	}
	for _, record := range ms.records {
		if query.MatchField(record, field, value) {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (ms *MemStore) Exists(id int32) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return false, ErrClosed
	}

	_, ok := ms.keydir.Get(id)
	return ok, nil
}

func (ms *MemStore) Stat() (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return 0, ErrClosed
	}
	return len(ms.records), nil
}

// Purge has nothing to reclaim, removed records are already gone
func (ms *MemStore) Purge() (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return 0, ErrClosed
	}
	return 0, nil
}

func (ms *MemStore) Snapshot() (*model.Snapshot, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return nil, ErrClosed
	}

	records := make([]model.Record, len(ms.records))
	for i, record := range ms.records {
		records[i] = *record
	}
	return model.NewSnapshot(records), nil
}

func (ms *MemStore) Restore(snapshot *model.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	incoming := snapshot.Records()

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed
	}

	ms.records = make([]*model.Record, 0, len(incoming))
	ms.keydir.Clear()
	ms.index.Clear()
	for i := range incoming {
		incoming[i].Salary = model.RoundSalary(incoming[i].Salary)
		ms.add(&incoming[i])
	}
	level.Info(ms.options.logger).Log("msg", "restored records", "backend", "memory", "records", len(incoming))
	return nil
}

func (ms *MemStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.closed = true
	return nil
}

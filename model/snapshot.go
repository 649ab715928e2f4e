package model

import "strings"

// Snapshot is an immutable, ordered copy of active records.
type Snapshot struct {
	records []Record
}

func NewSnapshot(records []Record) *Snapshot {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Snapshot{records: cp}
}

// Records returns a copy of the snapshot content.
func (s *Snapshot) Records() []Record {
	if s == nil {
		return nil
	}
	cp := make([]Record, len(s.records))
	copy(cp, s.records)
	return cp
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Validate rejects empty names and duplicate ids.
func (s *Snapshot) Validate() error {
	if s == nil {
		return Malformed(nil, "no snapshot")
	}
	seen := make(map[int32]struct{}, len(s.records))
	for i := range s.records {
		rec := &s.records[i]
		if strings.TrimSpace(rec.FirstName) == "" || strings.TrimSpace(rec.LastName) == "" {
			return Malformed(ErrEmptyValue, "record %d has an empty name", rec.ID)
		}
		if _, ok := seen[rec.ID]; ok {
			return Malformed(nil, "duplicate id %d", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	return nil
}

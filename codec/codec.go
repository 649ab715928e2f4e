package codec

import "github.com/cqkv/recstore/model"

type Codec interface {
	// SlotSize return the fixed size of one encoded record
	SlotSize() int64

	// MarshalRecord return slot data with the given status
	MarshalRecord(*model.Record, uint16) ([]byte, error)

	// UnmarshalStatus decode the status field of a slot
	UnmarshalStatus([]byte) (uint16, error)

	UnmarshalRecord([]byte, *model.Record) error
}

package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cqkv/recstore/model"
	"github.com/cqkv/recstore/utils"
)

const msgpackVersion = 1

var errChecksum = errors.New("checksum mismatch")

// Msgpack is a compact binary form: a versioned envelope holding the
// msgpack-encoded records and their crc32.
type Msgpack struct{}

type msgpackEnvelope struct {
	Version int    `msgpack:"v"`
	Crc     uint32 `msgpack:"c"`
	Records []byte `msgpack:"r"`
}

type msgpackRecord struct {
	ID          int32  `msgpack:"id"`
	FirstName   string `msgpack:"fn"`
	LastName    string `msgpack:"ln"`
	DateOfBirth string `msgpack:"dob"`
	Age         int16  `msgpack:"age"`
	Salary      string `msgpack:"sal"`
	Gender      string `msgpack:"g"`
}

func (Msgpack) Encode(w io.Writer, snap *model.Snapshot) error {
	recs := make([]msgpackRecord, 0, snap.Len())
	for _, rec := range snap.Records() {
		recs = append(recs, msgpackRecord{
			ID:          rec.ID,
			FirstName:   rec.FirstName,
			LastName:    rec.LastName,
			DateOfBirth: rec.DateOfBirth.Format(model.DateLayout),
			Age:         rec.Age,
			Salary:      rec.Salary.String(),
			Gender:      string(rec.Gender),
		})
	}
	payload, err := msgpack.Marshal(recs)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(&msgpackEnvelope{
		Version: msgpackVersion,
		Crc:     utils.Checksum(payload),
		Records: payload,
	})
}

func (Msgpack) Decode(r io.Reader) (*model.Snapshot, error) {
	var env msgpackEnvelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, model.Malformed(err, "decode msgpack envelope")
	}
	if env.Version != msgpackVersion {
		return nil, model.Malformed(nil, "unsupported msgpack snapshot version %d", env.Version)
	}
	if !utils.VerifyChecksum(env.Crc, env.Records) {
		return nil, model.Malformed(errChecksum, "msgpack records")
	}

	var recs []msgpackRecord
	if err := msgpack.Unmarshal(env.Records, &recs); err != nil {
		return nil, model.Malformed(err, "decode msgpack records")
	}
	records := make([]model.Record, 0, len(recs))
	for i := range recs {
		rec, err := recs[i].record()
		if err != nil {
			return nil, model.Malformed(err, "msgpack record #%d", i+1)
		}
		records = append(records, rec)
	}
	return model.NewSnapshot(records), nil
}

func (m *msgpackRecord) record() (model.Record, error) {
	var rec model.Record
	dob, err := model.ParseDate(m.DateOfBirth)
	if err != nil {
		return rec, fmt.Errorf("date of birth: %w", err)
	}
	salary, err := decimal.NewFromString(m.Salary)
	if err != nil {
		return rec, fmt.Errorf("salary: %w", err)
	}
	gender, err := parseGender(m.Gender)
	if err != nil {
		return rec, fmt.Errorf("gender: %w", err)
	}

	rec.ID = m.ID
	rec.FirstName = m.FirstName
	rec.LastName = m.LastName
	rec.DateOfBirth = dob
	rec.Age = m.Age
	rec.Salary = salary
	rec.Gender = gender
	return rec, nil
}

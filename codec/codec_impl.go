package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cqkv/recstore/model"
	"github.com/shopspring/decimal"
)

/*
slot codec, little-endian, 278 bytes:
	status(2) | id(4) | firstName(120) | lastName(120) | year(4) | month(4) | day(4) | age(2) | salary(8) | gender(2) | reserved(8)
	- names are ASCII, space padded right
	- salary is an int64 fixed point number with 4 fractional digits
	- gender is the uint16 code of the character
	- reserved bytes are written as zero and ignored on read
*/

const (
	NameSize = 120

	statusOffset    = 0
	idOffset        = 2
	firstNameOffset = 6
	lastNameOffset  = firstNameOffset + NameSize
	yearOffset      = lastNameOffset + NameSize
	monthOffset     = yearOffset + 4
	dayOffset       = monthOffset + 4
	ageOffset       = dayOffset + 4
	salaryOffset    = ageOffset + 2
	genderOffset    = salaryOffset + 8
	reservedOffset  = genderOffset + 2

	ReservedSize = 8
	SlotSize     = reservedOffset + ReservedSize

	SalaryScale = model.SalaryScale
)

var (
	ErrNameTooLong   = errors.New("name exceeds slot field")
	ErrNonASCII      = errors.New("name is not ascii")
	ErrSalaryRange   = errors.New("salary out of range")
	ErrGenderRange   = errors.New("gender out of range")
	ErrShortSlot     = errors.New("short slot")
	ErrInvalidStatus = errors.New("invalid slot status")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
)

var maxSalary = decimal.New(math.MaxInt64, -SalaryScale)

type SlotCodec struct{}

func NewSlotCodec() *SlotCodec {
	return &SlotCodec{}
}

func (sc *SlotCodec) SlotSize() int64 {
	return SlotSize
}

func (sc *SlotCodec) MarshalRecord(record *model.Record, status uint16) ([]byte, error) {
	data := make([]byte, SlotSize)

	binary.LittleEndian.PutUint16(data[statusOffset:], status)
	binary.LittleEndian.PutUint32(data[idOffset:], uint32(record.ID))

	if err := putName(data[firstNameOffset:lastNameOffset], record.FirstName); err != nil {
		return nil, fmt.Errorf("first name: %w", err)
	}
	if err := putName(data[lastNameOffset:yearOffset], record.LastName); err != nil {
		return nil, fmt.Errorf("last name: %w", err)
	}

	dob := record.DateOfBirth
	binary.LittleEndian.PutUint32(data[yearOffset:], uint32(int32(dob.Year())))
	binary.LittleEndian.PutUint32(data[monthOffset:], uint32(int32(dob.Month())))
	binary.LittleEndian.PutUint32(data[dayOffset:], uint32(int32(dob.Day())))

	binary.LittleEndian.PutUint16(data[ageOffset:], uint16(record.Age))

	if record.Salary.Abs().GreaterThan(maxSalary) {
		return nil, ErrSalaryRange
	}
	salary := model.RoundSalary(record.Salary).Shift(SalaryScale).IntPart()
	binary.LittleEndian.PutUint64(data[salaryOffset:], uint64(salary))

	if record.Gender < 0 || record.Gender > math.MaxUint16 {
		return nil, ErrGenderRange
	}
	binary.LittleEndian.PutUint16(data[genderOffset:], uint16(record.Gender))
	clear(data[reservedOffset:SlotSize])

	return data, nil
}

func (sc *SlotCodec) UnmarshalStatus(data []byte) (uint16, error) {
	if len(data) < model.StatusSize {
		return 0, ErrShortSlot
	}
	status := binary.LittleEndian.Uint16(data[statusOffset:])
	switch status {
	case model.StatusActive, model.StatusTombstoned:
		return status, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidStatus, status)
}

func (sc *SlotCodec) UnmarshalRecord(data []byte, record *model.Record) error {
	if len(data) < SlotSize {
		return ErrShortSlot
	}

	firstName, err := getName(data[firstNameOffset:lastNameOffset])
	if err != nil {
		return fmt.Errorf("first name: %w", err)
	}
	lastName, err := getName(data[lastNameOffset:yearOffset])
	if err != nil {
		return fmt.Errorf("last name: %w", err)
	}

	year := int32(binary.LittleEndian.Uint32(data[yearOffset:]))
	month := int32(binary.LittleEndian.Uint32(data[monthOffset:]))
	day := int32(binary.LittleEndian.Uint32(data[dayOffset:]))
	dob := model.Date(int(year), time.Month(month), int(day))
	// time.Date normalizes overflowing values, a round trip catches them
	if dob.Year() != int(year) || int32(dob.Month()) != month || int32(dob.Day()) != day {
		return fmt.Errorf("%w: %d-%d-%d", ErrInvalidDate, year, month, day)
	}

	record.ID = int32(binary.LittleEndian.Uint32(data[idOffset:]))
	record.FirstName = firstName
	record.LastName = lastName
	record.DateOfBirth = dob
	record.Age = int16(binary.LittleEndian.Uint16(data[ageOffset:]))
	record.Salary = decimal.New(int64(binary.LittleEndian.Uint64(data[salaryOffset:])), -SalaryScale)
	record.Gender = rune(binary.LittleEndian.Uint16(data[genderOffset:]))
	return nil
}

func putName(dst []byte, name string) error {
	if len(name) > len(dst) {
		return ErrNameTooLong
	}
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return ErrNonASCII
		}
	}
	n := copy(dst, name)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
	return nil
}

func getName(src []byte) (string, error) {
	for _, b := range src {
		if b >= 0x80 {
			return "", ErrNonASCII
		}
	}
	name := string(bytes.TrimRight(src, " \x00"))
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

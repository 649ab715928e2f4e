package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newRecord() *Record {
	return &Record{
		ID: 12,
		Fields: Fields{
			FirstName:   "Anna",
			LastName:    "Lee",
			DateOfBirth: Date(1990, 5, 1),
			Age:         30,
			Salary:      decimal.RequireFromString("50000.50"),
			Gender:      'F',
		},
	}
}

func TestRecord_Text(t *testing.T) {
	rec := newRecord()

	want := map[string]string{
		"id":          "12",
		"FirstName":   "Anna",
		"lastname":    "Lee",
		"DATEOFBIRTH": "1990-05-01",
		"age":         "30",
		"salary":      "50000.5",
		"gender":      "F",
	}
	for field, text := range want {
		got, ok := rec.Text(field)
		assert.True(t, ok, field)
		assert.Equal(t, text, got, field)
	}

	_, ok := rec.Text("nickname")
	assert.False(t, ok)
}

func TestRecord_Set(t *testing.T) {
	rec := newRecord()

	changed, err := rec.Set("age", "31")
	assert.Nil(t, err)
	assert.True(t, changed)

	changed, err = rec.Set("age", "31")
	assert.Nil(t, err)
	assert.False(t, changed)

	changed, err = rec.Set("salary", "50000.500")
	assert.Nil(t, err)
	assert.False(t, changed)

	changed, err = rec.Set("salary", "50000.50004")
	assert.Nil(t, err)
	assert.False(t, changed)
	changed, err = rec.Set("salary", "50000.50005")
	assert.Nil(t, err)
	assert.True(t, changed)
	assert.Equal(t, "50000.5001", rec.Salary.String())
	_, _ = rec.Set("salary", "50000.5")

	_, err = rec.Set("age", "99999")
	assert.Error(t, err)
	_, err = rec.Set("firstname", "  ")
	assert.ErrorIs(t, err, ErrEmptyValue)
	_, err = rec.Set("gender", "MF")
	assert.ErrorIs(t, err, ErrBadGender)
	_, err = rec.Set("id", "1")
	assert.ErrorIs(t, err, ErrUnknownField)

	assert.Equal(t, int16(31), rec.Age)
	assert.Equal(t, "Anna", rec.FirstName)
}

func TestRecord_Project(t *testing.T) {
	rec := newRecord()

	full := rec.Project(nil)
	assert.True(t, full.Equal(rec))

	part := rec.Project([]string{"id", "Salary", "unknown"})
	assert.Equal(t, int32(12), part.ID)
	assert.True(t, part.Salary.Equal(rec.Salary))
	assert.Empty(t, part.FirstName)
	assert.Equal(t, int16(0), part.Age)
	assert.Equal(t, rune(0), part.Gender)
}

func TestSnapshot_Validate(t *testing.T) {
	good := NewSnapshot([]Record{*newRecord()})
	assert.Nil(t, good.Validate())

	dup := NewSnapshot([]Record{*newRecord(), *newRecord()})
	assert.ErrorIs(t, dup.Validate(), ErrMalformedSnapshot)

	blank := newRecord()
	blank.FirstName = " "
	assert.ErrorIs(t, NewSnapshot([]Record{*blank}).Validate(), ErrMalformedSnapshot)

	var missing *Snapshot
	assert.ErrorIs(t, missing.Validate(), ErrMalformedSnapshot)
	assert.Equal(t, 0, missing.Len())
}

func TestSnapshot_Immutable(t *testing.T) {
	records := []Record{*newRecord()}
	snap := NewSnapshot(records)
	records[0].FirstName = "Changed"

	got := snap.Records()
	assert.Equal(t, "Anna", got[0].FirstName)
	got[0].FirstName = "Changed"
	assert.Equal(t, "Anna", snap.Records()[0].FirstName)
}

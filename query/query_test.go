package query

import (
	"testing"

	"github.com/cqkv/recstore/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newRecord() *model.Record {
	return &model.Record{
		ID: 1,
		Fields: model.Fields{
			FirstName:   "Anna",
			LastName:    "Lee",
			DateOfBirth: model.Date(1990, 5, 1),
			Age:         30,
			Salary:      decimal.NewFromInt(50000),
			Gender:      'F',
		},
	}
}

func TestConditions_Match(t *testing.T) {
	rec := newRecord()

	assert.True(t, Conditions{}.Match(rec))
	assert.True(t, Where("firstname", "ANNA").Match(rec))
	assert.True(t, Where("FirstName", "anna", "lastname", "lee").Match(rec))
	assert.False(t, Where("firstname", "anna", "lastname", "smith").Match(rec))
	assert.True(t, Where("dateofbirth", "1990-05-01", "gender", "f").Match(rec))
	assert.False(t, Where("dateofbirth", "1990-5-1").Match(rec))
	assert.True(t, Where("id", "1", "age", "30", "salary", "50000").Match(rec))
	assert.False(t, Where("salary", "50000.00").Match(rec))
}

func TestConditions_Match_UnknownField(t *testing.T) {
	rec := newRecord()

	assert.True(t, Where("nickname", "x").Match(rec))
	assert.False(t, Where("nickname", "x", "age", "31").Match(rec))
}

func TestMatchField(t *testing.T) {
	rec := newRecord()

	assert.True(t, MatchField(rec, "lastname", "LEE"))
	assert.False(t, MatchField(rec, "lastname", "Smith"))
	assert.False(t, MatchField(rec, "nickname", ""))
}

func TestAssignments_Apply(t *testing.T) {
	rec := newRecord()

	changed := Assignments{"age": "31", "salary": "abc", "gender": "FF"}.Apply(rec)
	assert.True(t, changed)
	assert.Equal(t, int16(31), rec.Age)
	assert.Equal(t, "50000", rec.Salary.String())
	assert.Equal(t, 'F', rec.Gender)

	changed = Assignments{"age": "31", "id": "99"}.Apply(rec)
	assert.False(t, changed)
	assert.Equal(t, int32(1), rec.ID)

	changed = Assignments{"dateofbirth": "not a date"}.Apply(rec)
	assert.False(t, changed)

	changed = Assignments{"lastname": "Smith", "dateofbirth": "1991-01-01"}.Apply(rec)
	assert.True(t, changed)
	assert.Equal(t, "Smith", rec.LastName)
	assert.Equal(t, model.Date(1991, 1, 1), rec.DateOfBirth)

	assert.False(t, Assignments{}.Apply(rec))
}

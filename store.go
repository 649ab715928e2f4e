package recstore

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cqkv/recstore/model"
	"github.com/cqkv/recstore/query"
)

// Store is the record storage contract shared by every backend.
//
// A Store is guarded by one lock per instance; the file backend additionally
// holds an exclusive file lock for as long as it is open.
type Store interface {
	// Create validates fields and stores them under max(active ids) + 1.
	Create(fields model.Fields) (int32, error)
	// Insert is Create with a caller supplied id.
	Insert(id int32, fields model.Fields) (int32, error)
	Edit(id int32, fields model.Fields) error
	Remove(id int32) (bool, error)

	// DeleteWhere removes every record whose field equals value and returns their ids.
	DeleteWhere(field, value string) ([]int32, error)
	// UpdateWhere applies set to the records matching all conditions and
	// returns how many records changed.
	UpdateWhere(set query.Assignments, where query.Conditions) (int, error)
	// Select returns the matching records projected to fields.
	Select(fields []string, where query.Conditions) ([]model.Record, error)
	FindBy(field, value string) ([]model.Record, error)

	Exists(id int32) (bool, error)
	// Stat returns the number of stored records. Tombstones count until purged.
	Stat() (int, error)
	// Purge reclaims tombstoned records and returns how many were removed.
	Purge() (int, error)

	Snapshot() (*model.Snapshot, error)
	// Restore replaces the whole content of the store.
	Restore(snapshot *model.Snapshot) error

	Close() error
}

// Validator accepts or rejects single field values.
// A non-nil error carries a human readable reason.
type Validator interface {
	ValidateFirstName(string) error
	ValidateLastName(string) error
	ValidateDateOfBirth(time.Time) error
	ValidateAge(int16) error
	ValidateSalary(decimal.Decimal) error
	ValidateGender(rune) error
}

// validateFields checks fields in declaration order and reports the first failure.
func validateFields(v Validator, f *model.Fields) error {
	checks := []struct {
		field string
		check func() error
	}{
		{model.FieldFirstName, func() error { return v.ValidateFirstName(f.FirstName) }},
		{model.FieldLastName, func() error { return v.ValidateLastName(f.LastName) }},
		{model.FieldDateOfBirth, func() error { return v.ValidateDateOfBirth(f.DateOfBirth) }},
		{model.FieldAge, func() error { return v.ValidateAge(f.Age) }},
		{model.FieldSalary, func() error { return v.ValidateSalary(f.Salary) }},
		{model.FieldGender, func() error { return v.ValidateGender(f.Gender) }},
	}
	for _, c := range checks {
		if err := c.check(); err != nil {
			return &ValidationError{Field: c.field, Reason: err.Error()}
		}
	}
	return nil
}

// prepareFields trims names, rounds the salary to the stored scale and drops
// the time part of the date of birth.
func prepareFields(f model.Fields) model.Fields {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Salary = model.RoundSalary(f.Salary)
	if !f.DateOfBirth.IsZero() {
		y, m, d := f.DateOfBirth.Date()
		f.DateOfBirth = model.Date(y, m, d)
	}
	return f
}

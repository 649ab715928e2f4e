package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical text form of a date of birth.
const DateLayout = "2006-01-02"

// SalaryScale is the number of fractional salary digits a record keeps.
const SalaryScale = 4

// Field names, lower-cased. Input names are matched case-insensitively.
const (
	FieldID          = "id"
	FieldFirstName   = "firstname"
	FieldLastName    = "lastname"
	FieldDateOfBirth = "dateofbirth"
	FieldAge         = "age"
	FieldSalary      = "salary"
	FieldGender      = "gender"
)

// FieldNames lists every record field in validation order, id first.
var FieldNames = []string{
	FieldID, FieldFirstName, FieldLastName, FieldDateOfBirth, FieldAge, FieldSalary, FieldGender,
}

// Fields are the caller-controlled values of a person record.
type Fields struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time // date only, UTC midnight
	Age         int16
	Salary      decimal.Decimal
	Gender      rune
}

type Record struct {
	ID int32
	Fields
}

// RoundSalary rounds salary half away from zero to SalaryScale digits.
func RoundSalary(salary decimal.Decimal) decimal.Decimal {
	return salary.Round(SalaryScale)
}

// Date returns the UTC midnight of a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NormalizeField lower-cases and trims a field name.
func NormalizeField(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsField reports whether name is a known field name.
func IsField(name string) bool {
	switch NormalizeField(name) {
	case FieldID, FieldFirstName, FieldLastName, FieldDateOfBirth, FieldAge, FieldSalary, FieldGender:
		return true
	}
	return false
}

// Text returns the canonical textual form of the named field.
// ok is false for unknown field names.
func (r *Record) Text(field string) (text string, ok bool) {
	switch NormalizeField(field) {
	case FieldID:
		return strconv.FormatInt(int64(r.ID), 10), true
	case FieldFirstName:
		return r.FirstName, true
	case FieldLastName:
		return r.LastName, true
	case FieldDateOfBirth:
		return r.DateOfBirth.Format(DateLayout), true
	case FieldAge:
		return strconv.FormatInt(int64(r.Age), 10), true
	case FieldSalary:
		return r.Salary.String(), true
	case FieldGender:
		if r.Gender == 0 {
			return "", true
		}
		return string(r.Gender), true
	}
	return "", false
}

// Set parses text for the named field and assigns it.
// It returns whether the stored value changed. The id field cannot be set.
func (r *Record) Set(field, text string) (changed bool, err error) {
	text = strings.TrimSpace(text)
	switch NormalizeField(field) {
	case FieldFirstName:
		if text == "" {
			return false, ErrEmptyValue
		}
		changed = r.FirstName != text
		r.FirstName = text
	case FieldLastName:
		if text == "" {
			return false, ErrEmptyValue
		}
		changed = r.LastName != text
		r.LastName = text
	case FieldDateOfBirth:
		dob, err := ParseDate(text)
		if err != nil {
			return false, err
		}
		changed = !r.DateOfBirth.Equal(dob)
		r.DateOfBirth = dob
	case FieldAge:
		age, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return false, err
		}
		changed = r.Age != int16(age)
		r.Age = int16(age)
	case FieldSalary:
		salary, err := decimal.NewFromString(text)
		if err != nil {
			return false, err
		}
		salary = RoundSalary(salary)
		changed = !r.Salary.Equal(salary)
		r.Salary = salary
	case FieldGender:
		gender, err := ParseGender(text)
		if err != nil {
			return false, err
		}
		changed = r.Gender != gender
		r.Gender = gender
	default:
		return false, ErrUnknownField
	}
	return changed, nil
}

// Project returns a copy of r carrying only the requested fields.
// An empty field list keeps every field.
func (r *Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return *r
	}
	var out Record
	for _, f := range fields {
		switch NormalizeField(f) {
		case FieldID:
			out.ID = r.ID
		case FieldFirstName:
			out.FirstName = r.FirstName
		case FieldLastName:
			out.LastName = r.LastName
		case FieldDateOfBirth:
			out.DateOfBirth = r.DateOfBirth
		case FieldAge:
			out.Age = r.Age
		case FieldSalary:
			out.Salary = r.Salary
		case FieldGender:
			out.Gender = r.Gender
		}
	}
	return out
}

// Equal compares records by value.
func (r *Record) Equal(other *Record) bool {
	return r.ID == other.ID &&
		r.FirstName == other.FirstName &&
		r.LastName == other.LastName &&
		r.DateOfBirth.Equal(other.DateOfBirth) &&
		r.Age == other.Age &&
		r.Salary.Equal(other.Salary) &&
		r.Gender == other.Gender
}

func ParseDate(text string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(text), time.UTC)
}

// ParseGender accepts exactly one character.
func ParseGender(text string) (rune, error) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) != 1 {
		return 0, ErrBadGender
	}
	return runes[0], nil
}

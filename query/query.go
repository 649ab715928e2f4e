// Package query evaluates field=value conditions against records and applies
// textual field assignments.
//
// Every comparison uses the canonical text form of a field (model.Record.Text)
// and is case-insensitive. Several conditions are joined with AND; there is no OR.
package query

import (
	"strings"

	"github.com/cqkv/recstore/model"
)

// Conditions maps a field name to the expected canonical text.
type Conditions map[string]string

// Where builds Conditions from name, value pairs.
func Where(pairs ...string) Conditions {
	c := make(Conditions, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		c[model.NormalizeField(pairs[i])] = pairs[i+1]
	}
	return c
}

// Match reports whether record satisfies every condition.
// Unknown field names are ignored.
func (c Conditions) Match(record *model.Record) bool {
	for field, want := range c {
		got, ok := record.Text(field)
		if !ok {
			continue
		}
		if !strings.EqualFold(got, strings.TrimSpace(want)) {
			return false
		}
	}
	return true
}

// MatchField reports whether the named field of record equals value.
// An unknown field never matches.
func MatchField(record *model.Record, field, value string) bool {
	got, ok := record.Text(field)
	if !ok {
		return false
	}
	return strings.EqualFold(got, strings.TrimSpace(value))
}

// Assignments maps a field name to a new textual value.
type Assignments map[string]string

// Apply sets every assignment that parses for its field type and returns
// whether any stored value changed. Values that fail to parse and the id
// field are skipped.
func (a Assignments) Apply(record *model.Record) bool {
	changed := false
	for field, text := range a {
		if model.NormalizeField(field) == model.FieldID {
			continue
		}
		ok, err := record.Set(field, text)
		if err != nil {
			continue
		}
		changed = changed || ok
	}
	return changed
}

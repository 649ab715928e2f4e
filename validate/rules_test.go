package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqkv/recstore/model"
)

func newRules() *Rules {
	r := DefaultRules()
	r.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRules_ValidateName(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.ValidateFirstName("Anna"))
	assert.NoError(t, r.ValidateLastName("Lee"))
	assert.Error(t, r.ValidateFirstName(""))
	assert.Error(t, r.ValidateFirstName("A"))
	assert.Error(t, r.ValidateLastName(strings.Repeat("a", 61)))
	assert.Error(t, r.ValidateLastName("Müller"))
}

func TestRules_ValidateDateOfBirth(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.ValidateDateOfBirth(model.Date(1990, 5, 1)))
	assert.NoError(t, r.ValidateDateOfBirth(model.Date(2024, 6, 1)))
	assert.Error(t, r.ValidateDateOfBirth(model.Date(2024, 6, 2)))
	assert.Error(t, r.ValidateDateOfBirth(model.Date(1949, 12, 31)))

	r.MaxDate = "2000-01-01"
	assert.Error(t, r.ValidateDateOfBirth(model.Date(2000, 1, 2)))
}

func TestRules_ValidateAge(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.ValidateAge(0))
	assert.NoError(t, r.ValidateAge(150))
	assert.Error(t, r.ValidateAge(-1))
	assert.Error(t, r.ValidateAge(151))
}

func TestRules_ValidateSalary(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.ValidateSalary(decimal.NewFromInt(50000)))
	assert.Error(t, r.ValidateSalary(decimal.NewFromInt(-1)))
	assert.Error(t, r.ValidateSalary(decimal.NewFromInt(2_000_000_000)))
}

func TestRules_ValidateGender(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.ValidateGender('F'))
	assert.NoError(t, r.ValidateGender('M'))
	assert.Error(t, r.ValidateGender('X'))
	assert.Error(t, r.ValidateGender(0))

	r.Genders = ""
	assert.NoError(t, r.ValidateGender('X'))
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := "name_max_length: 10\nmax_age: 99\nmax_salary: 1000.50\ngenders: MFX\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 10, r.NameMaxLength)
	assert.Equal(t, 2, r.NameMinLength)
	assert.Equal(t, int16(99), r.MaxAge)
	assert.Equal(t, "1000.5", r.MaxSalary.String())
	assert.NoError(t, r.ValidateGender('X'))

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

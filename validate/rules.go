// Package validate provides the default field validator of the record stores.
//
// Rules are plain data so they can be loaded from YAML; the string and numeric
// checks are delegated to go-playground/validator.
package validate

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cqkv/recstore/model"
)

// Rules configure the accepted field values.
type Rules struct {
	NameMinLength int             `yaml:"name_min_length"`
	NameMaxLength int             `yaml:"name_max_length"`
	MinDate       string          `yaml:"min_date"` // yyyy-MM-dd
	MaxDate       string          `yaml:"max_date"` // yyyy-MM-dd, empty means today
	MinAge        int16           `yaml:"min_age"`
	MaxAge        int16           `yaml:"max_age"`
	MinSalary     decimal.Decimal `yaml:"min_salary"`
	MaxSalary     decimal.Decimal `yaml:"max_salary"`
	Genders       string          `yaml:"genders"` // accepted characters

	validate *validator.Validate
	now      func() time.Time
}

// DefaultRules returns the stock rule set.
func DefaultRules() *Rules {
	return &Rules{
		NameMinLength: 2,
		NameMaxLength: 60,
		MinDate:       "1950-01-01",
		MinAge:        0,
		MaxAge:        150,
		MinSalary:     decimal.Zero,
		MaxSalary:     decimal.NewFromInt(1_000_000_000),
		Genders:       "MF",
	}
}

// LoadRules reads rules from a YAML file, unset values keep their defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read validation rules %s: %w", path, err)
	}
	rules := DefaultRules()
	if err = yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("parse validation rules %s: %w", path, err)
	}
	return rules, nil
}

func (r *Rules) v() *validator.Validate {
	if r.validate == nil {
		r.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return r.validate
}

func (r *Rules) today() time.Time {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	y, m, d := now().UTC().Date()
	return model.Date(y, m, d)
}

func (r *Rules) ValidateFirstName(name string) error {
	return r.validateName(name)
}

func (r *Rules) ValidateLastName(name string) error {
	return r.validateName(name)
}

func (r *Rules) validateName(name string) error {
	tag := fmt.Sprintf("required,printascii,min=%d,max=%d", r.NameMinLength, r.NameMaxLength)
	if err := r.v().Var(strings.TrimSpace(name), tag); err != nil {
		return fmt.Errorf("must be %d to %d printable ascii characters", r.NameMinLength, r.NameMaxLength)
	}
	return nil
}

func (r *Rules) ValidateDateOfBirth(dob time.Time) error {
	if r.MinDate != "" {
		minDate, err := model.ParseDate(r.MinDate)
		if err != nil {
			return fmt.Errorf("bad min_date rule: %w", err)
		}
		if dob.Before(minDate) {
			return fmt.Errorf("must not be before %s", r.MinDate)
		}
	}
	maxDate := r.today()
	if r.MaxDate != "" {
		var err error
		if maxDate, err = model.ParseDate(r.MaxDate); err != nil {
			return fmt.Errorf("bad max_date rule: %w", err)
		}
	}
	if dob.After(maxDate) {
		return fmt.Errorf("must not be after %s", maxDate.Format(model.DateLayout))
	}
	return nil
}

func (r *Rules) ValidateAge(age int16) error {
	tag := fmt.Sprintf("gte=%d,lte=%d", r.MinAge, r.MaxAge)
	if err := r.v().Var(int(age), tag); err != nil {
		return fmt.Errorf("must be between %d and %d", r.MinAge, r.MaxAge)
	}
	return nil
}

func (r *Rules) ValidateSalary(salary decimal.Decimal) error {
	if salary.LessThan(r.MinSalary) || salary.GreaterThan(r.MaxSalary) {
		return fmt.Errorf("must be between %s and %s", r.MinSalary, r.MaxSalary)
	}
	return nil
}

func (r *Rules) ValidateGender(gender rune) error {
	if r.Genders == "" {
		if gender == 0 {
			return fmt.Errorf("must be a single character")
		}
		return nil
	}
	tag := "oneof=" + strings.Join(strings.Split(r.Genders, ""), " ")
	if gender == 0 || r.v().Var(string(gender), tag) != nil {
		return fmt.Errorf("must be one of %q", r.Genders)
	}
	return nil
}

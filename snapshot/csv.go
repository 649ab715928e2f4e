package snapshot

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cqkv/recstore/model"
)

var csvHeader = []string{"Id", "First Name", "Last Name", "Date of Birth", "Age", "Salary", "Gender"}

// CSV writes one row per record with quoted names and two decimal salaries.
type CSV struct{}

func (CSV) Encode(w io.Writer, snap *model.Snapshot) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, rec := range snap.Records() {
		_, err := fmt.Fprintf(bw, "%d,%s,%s,%s,%d,%s,%s\n",
			rec.ID,
			quote(rec.FirstName),
			quote(rec.LastName),
			rec.DateOfBirth.Format(model.DateLayout),
			rec.Age,
			rec.Salary.StringFixed(2),
			string(rec.Gender),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (CSV) Decode(r io.Reader) (*model.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.Malformed(err, "missing csv header")
	}
	if err != nil {
		return nil, model.Malformed(err, "read csv header")
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, model.Malformed(nil, "unexpected csv column %q, want %q", header[i], name)
		}
	}

	records := make([]model.Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.Malformed(err, "read csv row")
		}
		line, _ := reader.FieldPos(0)
		rec, err := parseCSVRow(row)
		if err != nil {
			return nil, model.Malformed(err, "csv line %d", line)
		}
		records = append(records, rec)
	}
	return model.NewSnapshot(records), nil
}

func parseCSVRow(row []string) (model.Record, error) {
	var rec model.Record
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 32)
	if err != nil {
		return rec, fmt.Errorf("id: %w", err)
	}
	dob, err := model.ParseDate(row[3])
	if err != nil {
		return rec, fmt.Errorf("date of birth: %w", err)
	}
	age, err := strconv.ParseInt(strings.TrimSpace(row[4]), 10, 16)
	if err != nil {
		return rec, fmt.Errorf("age: %w", err)
	}
	salary, err := decimal.NewFromString(strings.TrimSpace(row[5]))
	if err != nil {
		return rec, fmt.Errorf("salary: %w", err)
	}
	gender, err := parseGender(row[6])
	if err != nil {
		return rec, fmt.Errorf("gender: %w", err)
	}

	rec.ID = int32(id)
	rec.FirstName = strings.TrimSpace(row[1])
	rec.LastName = strings.TrimSpace(row[2])
	rec.DateOfBirth = dob
	rec.Age = int16(age)
	rec.Salary = salary
	rec.Gender = gender
	return rec, nil
}

package snapshot

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cqkv/recstore/model"
)

// XML writes a records root holding one record element per record.
type XML struct{}

type xmlRecords struct {
	XMLName xml.Name    `xml:"records"`
	Records []xmlRecord `xml:"record"`
}

type xmlRecord struct {
	ID          int32   `xml:"id,attr"`
	Name        xmlName `xml:"name"`
	DateOfBirth string  `xml:"dateOfBirth"`
	Age         int16   `xml:"age"`
	Salary      string  `xml:"salary"`
	Gender      string  `xml:"gender"`
}

type xmlName struct {
	First string `xml:"first,attr"`
	Last  string `xml:"last,attr"`
}

func (XML) Encode(w io.Writer, snap *model.Snapshot) error {
	doc := xmlRecords{}
	for _, rec := range snap.Records() {
		doc.Records = append(doc.Records, xmlRecord{
			ID:          rec.ID,
			Name:        xmlName{First: rec.FirstName, Last: rec.LastName},
			DateOfBirth: rec.DateOfBirth.Format(model.DateLayout),
			Age:         rec.Age,
			Salary:      rec.Salary.StringFixed(2),
			Gender:      string(rec.Gender),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (XML) Decode(r io.Reader) (*model.Snapshot, error) {
	var doc xmlRecords
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, model.Malformed(err, "decode xml")
	}

	records := make([]model.Record, 0, len(doc.Records))
	for i, x := range doc.Records {
		rec, err := x.record()
		if err != nil {
			return nil, model.Malformed(err, "xml record #%d", i+1)
		}
		records = append(records, rec)
	}
	return model.NewSnapshot(records), nil
}

func (x *xmlRecord) record() (model.Record, error) {
	var rec model.Record
	dob, err := model.ParseDate(x.DateOfBirth)
	if err != nil {
		return rec, fmt.Errorf("date of birth: %w", err)
	}
	salary, err := decimal.NewFromString(strings.TrimSpace(x.Salary))
	if err != nil {
		return rec, fmt.Errorf("salary: %w", err)
	}
	gender, err := parseGender(x.Gender)
	if err != nil {
		return rec, fmt.Errorf("gender: %w", err)
	}

	rec.ID = x.ID
	rec.FirstName = strings.TrimSpace(x.Name.First)
	rec.LastName = strings.TrimSpace(x.Name.Last)
	rec.DateOfBirth = dob
	rec.Age = x.Age
	rec.Salary = salary
	rec.Gender = gender
	return rec, nil
}

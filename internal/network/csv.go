// Package network mines a LinkedIn connections export for people already
// working at companies with open applications.
package network

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column headers in the connections export.
const (
	colFirstName   = "First Name"
	colLastName    = "Last Name"
	colEmail       = "Email Address"
	colCompany     = "Company"
	colPosition    = "Position"
	colConnectedOn = "Connected On"
)

var requiredColumns = []string{colFirstName, colLastName, colCompany}

// Connection is one row of the export.
type Connection struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	ConnectedOn string `json:"connected_on"`
}

// Name is the full display name.
func (c Connection) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// MissingColumnError is returned when the export lacks a required header.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

// ParseCSV reads a connections export. The export starts with a few lines of
// notes before the header row; everything before the first line containing
// both "First Name" and "Company" is skipped.
func ParseCSV(r io.Reader) ([]Connection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var index map[string]int
	var rows []Connection
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read connections CSV: %w", err)
		}

		if index == nil {
			if isHeader(rec) {
				index = headerIndex(rec)
				for _, col := range requiredColumns {
					if _, ok := index[col]; !ok {
						return nil, &MissingColumnError{Column: col}
					}
				}
			}
			continue
		}

		conn := Connection{
			FirstName:   field(rec, index, colFirstName),
			LastName:    field(rec, index, colLastName),
			Email:       field(rec, index, colEmail),
			Company:     field(rec, index, colCompany),
			Position:    field(rec, index, colPosition),
			ConnectedOn: field(rec, index, colConnectedOn),
		}
		if conn.Name() == "" && conn.Company == "" {
			continue
		}
		rows = append(rows, conn)
	}

	if index == nil {
		return nil, &MissingColumnError{Column: colFirstName}
	}
	return rows, nil
}

// ParseCSVString parses export text.
func ParseCSVString(content string) ([]Connection, error) {
	return ParseCSV(strings.NewReader(content))
}

func isHeader(rec []string) bool {
	var first, company bool
	for _, v := range rec {
		switch cleanHeader(v) {
		case colFirstName:
			first = true
		case colCompany:
			company = true
		}
	}
	return first && company
}

func headerIndex(rec []string) map[string]int {
	idx := make(map[string]int, len(rec))
	for i, v := range rec {
		idx[cleanHeader(v)] = i
	}
	return idx
}

func cleanHeader(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
}

func field(rec []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

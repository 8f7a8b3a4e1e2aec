package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"circuitee/internal/designer/models"
)

// ============================================================
// Record Types
// ============================================================

const (
	TypeReference1 = "reference1"
	TypeReference2 = "reference2"
	TypePoint      = "point"
	TypeLinear     = "linear"
	TypeSwitch     = "switch"
)

const headerPrefix = "Type,"

var (
	ErrMissingReference   = errors.New("export is missing a reference point")
	ErrDuplicateReference = errors.New("export has a duplicate reference point")
)

// Record is one data row: Type,X1,Y1,Z1,X2,Y2,Z2,Name.
type Record struct {
	Line  int
	Type  string
	Start models.Point3
	End   models.Point3
	Name  string
}

// Export is a parsed CSV file, split by record type.
type Export struct {
	Ref1     Record
	Ref2     Record
	Points   []Record
	Linears  []Record
	Switches []Record
	Warnings []string
}

// Len is the number of placeable records.
func (e *Export) Len() int {
	return len(e.Points) + len(e.Linears) + len(e.Switches)
}

// ============================================================
// Parser
// ============================================================

// ParseCSV reads a lighting export. Fields are split on commas with no quoting.
// Numbers that fail to parse become NaN and are dropped at placement time.
func ParseCSV(r io.Reader) (*Export, error) {
	export := &Export{}
	var haveRef1, haveRef2 bool

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, headerPrefix) {
			continue
		}

		rec := parseRecord(lineNo, strings.Split(line, ","))

		switch rec.Type {
		case TypeReference1:
			if haveRef1 {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, rec.Type, ErrDuplicateReference)
			}
			export.Ref1, haveRef1 = rec, true
		case TypeReference2:
			if haveRef2 {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, rec.Type, ErrDuplicateReference)
			}
			export.Ref2, haveRef2 = rec, true
		case TypePoint:
			export.Points = append(export.Points, rec)
		case TypeLinear:
			export.Linears = append(export.Linears, rec)
		case TypeSwitch:
			export.Switches = append(export.Switches, rec)
		default:
			export.Warnings = append(export.Warnings, fmt.Sprintf("line %d: unknown record type %q", lineNo, rec.Type))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if !haveRef1 {
		return nil, fmt.Errorf("%s: %w", TypeReference1, ErrMissingReference)
	}
	if !haveRef2 {
		return nil, fmt.Errorf("%s: %w", TypeReference2, ErrMissingReference)
	}
	return export, nil
}

func parseRecord(lineNo int, fields []string) Record {
	return Record{
		Line: lineNo,
		Type: strings.TrimSpace(field(fields, 0)),
		Start: models.Point3{
			X: parseNumber(field(fields, 1)),
			Y: parseNumber(field(fields, 2)),
			Z: parseNumber(field(fields, 3)),
		},
		End: models.Point3{
			X: parseNumber(field(fields, 4)),
			Y: parseNumber(field(fields, 5)),
			Z: parseNumber(field(fields, 6)),
		},
		Name: field(fields, 7),
	}
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

package earnings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// column binds a header label to the coercion that fills the matching Entry field.
type column struct {
	label  string
	assign func(entry *Entry, row int, value string) error
}

var columns = []column{
	{label: ColumnTime, assign: func(e *Entry, _ int, v string) error { e.Time = v; return nil }},
	{label: ColumnBlock, assign: func(e *Entry, _ int, v string) error { e.Block = v; return nil }},
	{label: ColumnShareLogPct, assign: func(e *Entry, _ int, v string) error { e.ShareLogPct = v; return nil }},
	{label: ColumnShareCount, assign: func(e *Entry, row int, v string) error {
		n, err := parseUnsigned(v)
		if err != nil {
			return &InvalidIntegerError{Row: row, Value: v, Err: err}
		}
		e.ShareCount = n
		return nil
	}},
	{label: ColumnEarnings, assign: floatColumn(ColumnEarnings, func(e *Entry, f float64) { e.EarningsBTC = f })},
	{label: ColumnPoolFees, assign: floatColumn(ColumnPoolFees, func(e *Entry, f float64) { e.PoolFeesBTC = f })},
}

func floatColumn(label string, set func(*Entry, float64)) func(*Entry, int, string) error {
	return func(e *Entry, row int, v string) error {
		f, err := parseDecimal(v)
		if err != nil {
			return &InvalidFloatError{Row: row, Field: label, Value: v, Err: err}
		}
		set(e, f)
		return nil
	}
}

// Parse converts an OCEAN earnings CSV export into entries, preserving row order.
//
// Columns are resolved by header label, so reordered or additional columns are
// tolerated. Parsing stops at the first bad row and returns no entries.
// Quoting follows RFC 4180: a bare quote in an unquoted field is a malformed
// row, and a CRLF inside a quoted field reads back as a single \n.
func Parse(raw string) ([]Entry, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, utf8BOM)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingHeader, err)
	}

	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedRowError{Row: row, Err: err}
		}
		if len(record) != len(header) {
			return nil, &MalformedRowError{
				Row: row,
				Err: fmt.Errorf("got %d fields, header has %d", len(record), len(header)),
			}
		}

		var entry Entry
		for i, col := range columns {
			if err := col.assign(&entry, row, record[index[i]]); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// resolveColumns returns, for each required column, its position in header.
func resolveColumns(header []string) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, label := range header {
		if _, seen := positions[label]; seen {
			if isRequired(label) {
				return nil, &DuplicateFieldError{Label: label}
			}
			continue
		}
		positions[label] = i
	}

	index := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := positions[col.label]
		if !ok {
			return nil, &MissingFieldError{Label: col.label}
		}
		index[i] = pos
	}
	return index, nil
}

func isRequired(label string) bool {
	for _, col := range columns {
		if col.label == label {
			return true
		}
	}
	return false
}

func parseUnsigned(v string) (uint64, error) {
	if v == "" {
		return 0, errors.New("empty value")
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("unexpected character %q", r)
		}
	}
	return strconv.ParseUint(v, 10, 64)
}

func parseDecimal(v string) (float64, error) {
	if !decimalPattern.MatchString(v) {
		return 0, errors.New("not a decimal number")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) {
		return 0, errors.New("value out of range")
	}
	return f, nil
}

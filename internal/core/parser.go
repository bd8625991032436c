package core

import (
	"strconv"
	"strings"
)

// FieldSeparator splits the columns of one import line.
const FieldSeparator = ";"

// Malformed row reasons.
const (
	ReasonWrongFieldCount = "wrong field count"
	ReasonEmptyField      = "empty field"
	ReasonBadQuantity     = "quantity not an integer"
)

// ParseBatch turns raw "barcode;description;quantity" lines into rows.
//
// Only an empty or whitespace-only input is an error. Bad lines become
// RowMalformed rows and parsing carries on. Blank lines produce no row at
// all, but LineNumber always matches the physical line so reports point
// at the right place.
func ParseBatch(raw string) ([]ImportRow, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingInput
	}

	lines := strings.Split(raw, "\n")
	rows := make([]ImportRow, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, parseFields(i+1, strings.Split(line, FieldSeparator)))
	}
	return rows, nil
}

// parseFields validates one split line. Fields are trimmed, which also
// drops the \r left behind by CRLF input.
func parseFields(lineNumber int, fields []string) ImportRow {
	row := ImportRow{LineNumber: lineNumber}

	if len(fields) != 3 {
		if len(fields) > 0 {
			row.Barcode = strings.TrimSpace(fields[0])
		}
		return malformed(row, ReasonWrongFieldCount)
	}

	row.Barcode = strings.TrimSpace(fields[0])
	row.Description = strings.TrimSpace(fields[1])
	qty := strings.TrimSpace(fields[2])

	if row.Barcode == "" || row.Description == "" || qty == "" {
		return malformed(row, ReasonEmptyField)
	}

	delta, err := strconv.ParseInt(qty, 10, 64)
	if err != nil {
		return malformed(row, ReasonBadQuantity)
	}

	row.QuantityDelta = delta
	row.Status = RowPending
	return row
}

func malformed(row ImportRow, reason string) ImportRow {
	row.Status = RowMalformed
	row.Reason = reason
	return row
}

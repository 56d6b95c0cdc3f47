package table

import (
	"strconv"
	"strings"
	"time"
)

const dateOutputFormat = "2006-01-02"

// Calendar formats recognized by inference, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
}

// Infer determines one type per column by sampling every value in the
// column. The narrowest type all non-empty values satisfy wins, in order
// Boolean, Integer, Float, Date; String always succeeds. Empty fields are
// null markers and never disqualify a candidate. A column with no non-empty
// values infers to String.
func Infer(raw *Raw) []Column {
	cols := make([]Column, len(raw.Header))
	for i, name := range raw.Header {
		cols[i] = Column{Name: name, Type: inferColumn(raw.Rows, i)}
	}
	return cols
}

func inferColumn(rows [][]string, idx int) Type {
	isBool, isInt, isFloat, isDate := true, true, true, true
	seen := false
	for _, row := range rows {
		s := row[idx]
		if s == "" {
			continue
		}
		seen = true
		if isBool && !boolToken(s) {
			isBool = false
		}
		if isInt && !intToken(s) {
			isInt = false
		}
		if isFloat && !floatToken(s) {
			isFloat = false
		}
		if isDate {
			if _, ok := ParseDate(s); !ok {
				isDate = false
			}
		}
		if !isBool && !isInt && !isFloat && !isDate {
			return TypeString
		}
	}
	if !seen {
		return TypeString
	}
	switch {
	case isBool:
		return TypeBoolean
	case isInt:
		return TypeInteger
	case isFloat:
		return TypeFloat
	case isDate:
		return TypeDate
	default:
		return TypeString
	}
}

func boolToken(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func intToken(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// floatToken accepts sign, digits, one decimal point and an optional
// exponent. strconv alone is too loose here: it also takes "inf", "NaN"
// and hex floats, which must stay String.
func floatToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '.' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ParseDate parses s against the recognized calendar formats.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

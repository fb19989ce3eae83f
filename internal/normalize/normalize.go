// Package normalize converts raw PBS CSV cells into typed values. The
// upstream tables use blank cells and the literal string "null"
// interchangeably for missing data, so every helper funnels through Nullable.
package normalize

import (
	"strconv"
	"strings"
)

// Nullable trims the cell and maps blank or case-insensitive "null" to nil.
func Nullable(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// Integer parses a base-10 integer cell. Non-numeric values are nil, not an
// error; the dataset routinely carries junk in numeric columns.
func Integer(raw string) *int {
	s := Nullable(raw)
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil
	}
	return &n
}

// AuthorityCode normalizes an authority method cell to upper case.
func AuthorityCode(raw string) *string {
	s := Nullable(raw)
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}

// HospitalType classifies a PBS program code: HS is private hospital, HB is
// public hospital, any other non-null code prescribes in either setting.
func HospitalType(programCode string) *string {
	s := Nullable(programCode)
	if s == nil {
		return nil
	}
	var t string
	switch strings.ToUpper(*s) {
	case "HS":
		t = "Private"
	case "HB":
		t = "Public"
	default:
		t = "Any"
	}
	return &t
}

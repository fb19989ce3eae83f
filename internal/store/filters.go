package store

import (
	"fmt"
	"strings"
)

// Filters narrows combination queries. Multi-value fields combine as
// column = ANY(values); distinct fields combine with AND.
type Filters struct {
	ScheduleYear  *int
	ScheduleMonth *string

	Drug            []string
	Brand           []string
	Formulation     []string
	Indication      []string
	TreatmentPhase  []string
	HospitalType    []string
	AuthorityMethod []string

	Sort string
}

// sortColumns maps API sort keys onto ORDER BY expressions. The schedule key
// relies on schedule_month_date, which the ranked CTE derives from the
// upper-cased month name.
var sortColumns = map[string]string{
	"drug":        "drug ASC",
	"brand":       "brand ASC",
	"formulation": "formulation ASC",
	"indication":  "indication ASC",
	"schedule":    "schedule_year DESC, schedule_month_date DESC",
	"default":     "drug ASC, brand ASC",
}

// orderBy resolves the filter's sort key, falling back to the default order.
func (f Filters) orderBy() string {
	if expr, ok := sortColumns[f.Sort]; ok && f.Sort != "" {
		return "ORDER BY " + expr
	}
	return "ORDER BY " + sortColumns["default"]
}

// whereClause builds the WHERE fragment and its positional arguments.
// excludeColumn suppresses one multi-value filter, which lookup queries use
// so a column's own selection never narrows its option list.
func (f Filters) whereClause(excludeColumn string) (string, []any) {
	var clauses []string
	var args []any

	if f.ScheduleYear != nil {
		args = append(args, *f.ScheduleYear)
		clauses = append(clauses, fmt.Sprintf("schedule_year = $%d", len(args)))
	}
	if f.ScheduleMonth != nil {
		args = append(args, *f.ScheduleMonth)
		clauses = append(clauses, fmt.Sprintf("schedule_month = $%d", len(args)))
	}

	multi := []struct {
		column string
		values []string
	}{
		{"drug", f.Drug},
		{"brand", f.Brand},
		{"formulation", f.Formulation},
		{"indication", f.Indication},
		{"treatment_phase", f.TreatmentPhase},
		{"hospital_type", f.HospitalType},
		{"authority_method", f.AuthorityMethod},
	}
	for _, m := range multi {
		if len(m.values) == 0 || m.column == excludeColumn {
			continue
		}
		args = append(args, m.values)
		clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", m.column, len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

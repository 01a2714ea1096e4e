package models

import (
	"fmt"
	"strings"
)

// PresetQuery describes a per-period count over a source table. It is
// the building block behind the mapping configuration presets: the
// rendered text counts rows per period bucket of the target data set.
type PresetQuery struct {
	Table      string `json:"table"`
	DateColumn string `json:"dateColumn"`
	Condition  string `json:"condition,omitempty"`
}

// Render produces the SQL text for the given period type. The result
// has exactly the date and value columns the submission pipeline needs.
func (p *PresetQuery) Render(periodType PeriodType) (string, error) {
	if strings.TrimSpace(p.Table) == "" || strings.TrimSpace(p.DateColumn) == "" {
		return "", &InvalidMappingError{Reason: "a preset needs a table and a date column"}
	}
	trunc, err := DateTruncExpr(periodType, p.DateColumn)
	if err != nil {
		return "", err
	}
	where := fmt.Sprintf("%s IS NOT NULL", p.DateColumn)
	if strings.TrimSpace(p.Condition) != "" {
		where = fmt.Sprintf("(%s) AND %s", p.Condition, where)
	}
	return fmt.Sprintf("SELECT %s AS date, count(*) AS value FROM %s WHERE %s GROUP BY 1",
		trunc, p.Table, where), nil
}

package models

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ExecuteQuery runs a mapping query against the local database and
// returns the column names and rows
func ExecuteQuery(db *sqlx.DB, query string) ([]string, [][]interface{}, error) {
	// double quotation marks get duplicated when query text is
	// round-tripped through the configuration UI, undo that first
	query = strings.ReplaceAll(query, `""`, `"`)

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, nil, errors.Wrap(err, "query execution failed")
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read result columns")
	}
	var result [][]interface{}
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan result row")
		}
		result = append(result, row)
	}
	return columns, result, rows.Err()
}

// RequireResultColumns checks that a mapping query result carries the
// two columns the submission payload is built from
func RequireResultColumns(columns []string) error {
	if !lo.Contains(columns, "date") {
		return &InvalidMappingError{Reason: "the query must contain a date column"}
	}
	if !lo.Contains(columns, "value") {
		return &InvalidMappingError{Reason: "the query must contain a value column"}
	}
	return nil
}

// TestQuery validates a mapping query and returns its preview result.
// The submission pipeline and the preview endpoint share this routine.
func TestQuery(db *sqlx.DB, query string) ([]string, [][]interface{}, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, &InvalidMappingError{Reason: "no query defined"}
	}
	columns, result, err := ExecuteQuery(db, query)
	if err != nil {
		return nil, nil, err
	}
	if err := RequireResultColumns(columns); err != nil {
		return nil, nil, err
	}
	return columns, result, nil
}

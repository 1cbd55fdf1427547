package spreadsheet

import (
	"fmt"

	"winelabel/internal/dto"
	"winelabel/internal/validation"
)

// RowError reports a spreadsheet row that cannot be imported.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Failures converts row errors to the wire shape used by import reports.
func Failures(errs []RowError) []dto.ImportFailure {
	failures := make([]dto.ImportFailure, 0, len(errs))
	for _, e := range errs {
		failures = append(failures, dto.ImportFailure{Row: e.Row, Error: e.Err.Error()})
	}
	return failures
}

func partition[T any](rows []dto.ImportRow[T], v *validation.Validator) ([]dto.ImportRow[T], []RowError) {
	if v == nil {
		return rows, nil
	}
	valid := make([]dto.ImportRow[T], 0, len(rows))
	var errs []RowError
	for _, row := range rows {
		if err := v.Validate(row.Input); err != nil {
			errs = append(errs, RowError{Row: row.Row, Err: err})
			continue
		}
		valid = append(valid, row)
	}
	return valid, errs
}

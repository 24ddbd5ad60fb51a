package entities

import "errors"

var (
	ErrNoData           = errors.New("no data available for the selected date range")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrChartNotFound    = errors.New("chart not found")
	ErrExportNotFound   = errors.New("export not found")
	ErrExportsDisabled  = errors.New("exports are disabled")
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

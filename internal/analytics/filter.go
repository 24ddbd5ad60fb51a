package analytics

import (
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type FilterOptions struct {
	Start    time.Time
	End      time.Time
	UserType entities.UserType
}

// Filter keeps the rows whose calendar date lies in [Start, End] and sets
// cnt to the selected user type's count. The source table is never
// modified. An empty selection returns entities.ErrNoData.
func Filter(table *entities.Table, opts FilterOptions) (*entities.Table, error) {
	if table == nil {
		return nil, entities.ErrDatasetNotLoaded
	}
	if opts.UserType != entities.UserTypeCasual && opts.UserType != entities.UserTypeRegistered {
		return nil, entities.ValidationError{Field: "user_type", Reason: "must be casual or registered"}
	}

	window := entities.DateRange{Start: opts.Start, End: opts.End}
	if entities.DateOnly(window.Start).After(entities.DateOnly(window.End)) {
		return nil, entities.ValidationError{Field: "date_range", Reason: "start must not be after end"}
	}

	selected := make([]entities.RentalRecord, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		record := table.At(i)
		if !window.Contains(record.Date) {
			continue
		}
		record.Cnt = record.Count(opts.UserType)
		selected = append(selected, record)
	}

	if len(selected) == 0 {
		return nil, entities.ErrNoData
	}

	return entities.NewDerivedTable(table.Granularity(), selected), nil
}

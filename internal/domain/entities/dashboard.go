package entities

import (
	"fmt"
	"time"
)

const NoDataMessage = "No data available for the selected date range."

type DashboardQuery struct {
	Granularity Granularity `json:"granularity"`
	UserType    UserType    `json:"user_type"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Preview     bool        `json:"preview"`
}

func (q DashboardQuery) Validate() error {
	if q.Granularity != GranularityDaily && q.Granularity != GranularityHourly {
		return ValidationError{Field: "granularity", Reason: "must be daily or hourly"}
	}
	if q.UserType != UserTypeCasual && q.UserType != UserTypeRegistered {
		return ValidationError{Field: "user_type", Reason: "must be casual or registered"}
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return ValidationError{Field: "date_range", Reason: "start and end are required"}
	}
	if DateOnly(q.Start).After(DateOnly(q.End)) {
		return ValidationError{Field: "date_range", Reason: "start must not be after end"}
	}
	return nil
}

func (q DashboardQuery) Range() DateRange {
	return DateRange{Start: DateOnly(q.Start), End: DateOnly(q.End)}
}

// CacheKey identifies the query independently of dataset version.
func (q DashboardQuery) CacheKey() string {
	preview := 0
	if q.Preview {
		preview = 1
	}
	return fmt.Sprintf("%s:%s:%s:%s:p%d",
		q.Granularity,
		q.UserType,
		q.Start.Format("20060102"),
		q.End.Format("20060102"),
		preview)
}

type ChartKind string

const (
	ChartKindBar          ChartKind = "bar"
	ChartKindLine         ChartKind = "line"
	ChartKindDistribution ChartKind = "distribution"
)

type ChartData struct {
	Name   string            `json:"name"`
	Title  string            `json:"title"`
	Kind   ChartKind         `json:"kind"`
	XLabel string            `json:"x_label"`
	YLabel string            `json:"y_label"`
	Result AggregationResult `json:"result"`
}

type ChartInfo struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Kind        ChartKind   `json:"kind"`
	Granularity Granularity `json:"granularity,omitempty"`
}

type DashboardView struct {
	Query          DashboardQuery        `json:"query"`
	Empty          bool                  `json:"empty"`
	Message        string                `json:"message,omitempty"`
	Rows           int                   `json:"rows"`
	DatasetVersion string                `json:"dataset_version"`
	Correlation    *CorrelationMatrix    `json:"correlation,omitempty"`
	Charts         []ChartData           `json:"charts,omitempty"`
	Distribution   []DistributionSummary `json:"distribution,omitempty"`
	Preview        []RentalRecord        `json:"preview,omitempty"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

func (v *DashboardView) Chart(name string) (ChartData, bool) {
	for _, c := range v.Charts {
		if c.Name == name {
			return c, true
		}
	}
	return ChartData{}, false
}

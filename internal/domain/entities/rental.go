package entities

import (
	"fmt"
	"strings"
	"time"
)

type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityHourly Granularity = "hourly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return GranularityDaily, nil
	case "hourly", "hour":
		return GranularityHourly, nil
	}
	return "", ValidationError{Field: "granularity", Reason: fmt.Sprintf("unknown value %q, use daily or hourly", s)}
}

type UserType string

const (
	UserTypeCasual     UserType = "casual"
	UserTypeRegistered UserType = "registered"
)

func ParseUserType(s string) (UserType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "casual":
		return UserTypeCasual, nil
	case "registered":
		return UserTypeRegistered, nil
	}
	return "", ValidationError{Field: "user_type", Reason: fmt.Sprintf("unknown value %q, use casual or registered", s)}
}

// Column names as they appear in the source files. ColumnCnt is derived by
// filtering and never read from disk.
const (
	ColumnDate       = "dteday"
	ColumnSeason     = "season"
	ColumnWeather    = "weathersit"
	ColumnWorkingDay = "workingday"
	ColumnWeekday    = "weekday"
	ColumnTemp       = "temp"
	ColumnATemp      = "atemp"
	ColumnHum        = "hum"
	ColumnWindSpeed  = "windspeed"
	ColumnCasual     = "casual"
	ColumnRegistered = "registered"
	ColumnHour       = "hr"
	ColumnCnt        = "cnt"
)

// RentalRecord is one row of the daily or hourly table.
type RentalRecord struct {
	Date       time.Time `json:"dteday"`
	HasHour    bool      `json:"-"`
	Hour       int       `json:"hr,omitempty"`
	Season     int       `json:"season"`
	WeatherSit int       `json:"weathersit"`
	WorkingDay int       `json:"workingday"`
	Weekday    int       `json:"weekday"`
	Temp       float64   `json:"temp"`
	ATemp      float64   `json:"atemp"`
	Hum        float64   `json:"hum"`
	WindSpeed  float64   `json:"windspeed"`
	Casual     int       `json:"casual"`
	Registered int       `json:"registered"`
	Cnt        int       `json:"cnt"`
}

// Value returns the numeric value stored under column. The second result is
// false for unknown columns and for hr on daily rows.
func (r RentalRecord) Value(column string) (float64, bool) {
	switch column {
	case ColumnSeason:
		return float64(r.Season), true
	case ColumnWeather:
		return float64(r.WeatherSit), true
	case ColumnWorkingDay:
		return float64(r.WorkingDay), true
	case ColumnWeekday:
		return float64(r.Weekday), true
	case ColumnTemp:
		return r.Temp, true
	case ColumnATemp:
		return r.ATemp, true
	case ColumnHum:
		return r.Hum, true
	case ColumnWindSpeed:
		return r.WindSpeed, true
	case ColumnCasual:
		return float64(r.Casual), true
	case ColumnRegistered:
		return float64(r.Registered), true
	case ColumnCnt:
		return float64(r.Cnt), true
	case ColumnHour:
		if !r.HasHour {
			return 0, false
		}
		return float64(r.Hour), true
	}
	return 0, false
}

// Key returns the integer grouping key stored under a categorical column.
func (r RentalRecord) Key(column string) (int, bool) {
	switch column {
	case ColumnSeason:
		return r.Season, true
	case ColumnWeather:
		return r.WeatherSit, true
	case ColumnWorkingDay:
		return r.WorkingDay, true
	case ColumnWeekday:
		return r.Weekday, true
	case ColumnHour:
		return r.Hour, r.HasHour
	}
	return 0, false
}

// Count returns the rider count for the given user type.
func (r RentalRecord) Count(userType UserType) int {
	if userType == UserTypeRegistered {
		return r.Registered
	}
	return r.Casual
}

// Day is the calendar date of the record at midnight UTC.
func (r RentalRecord) Day() time.Time {
	return DateOnly(r.Date)
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package analytics

import (
	"strconv"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

// LabelMap translates raw categorical codes into display labels. Codes
// without an entry are shown as their numeric value.
type LabelMap map[int]string

func (m LabelMap) Label(key int) string {
	if label, ok := m[key]; ok {
		return label
	}
	return strconv.Itoa(key)
}

var (
	WeatherLabels = LabelMap{
		1: "Clear/Cloudy",
		2: "Misty",
		3: "Light Rain/Snow",
		4: "Heavy Rain/Storm",
	}

	SeasonLabels = LabelMap{
		1: "Spring",
		2: "Summer",
		3: "Fall",
		4: "Winter",
	}

	WeekdayLabels = LabelMap{
		0: "Sunday",
		1: "Monday",
		2: "Tuesday",
		3: "Wednesday",
		4: "Thursday",
		5: "Friday",
		6: "Saturday",
	}

	WorkingDayLabels = LabelMap{
		0: "Holiday",
		1: "Workday",
	}
)

var namedLabelMaps = map[string]LabelMap{
	"weather":    WeatherLabels,
	"season":     SeasonLabels,
	"weekday":    WeekdayLabels,
	"workingday": WorkingDayLabels,
}

// LabelMapByName resolves a label map referenced from the chart catalog.
// An empty name resolves to nil, which passes every key through.
func LabelMapByName(name string) (LabelMap, bool) {
	if name == "" {
		return nil, true
	}
	m, ok := namedLabelMaps[name]
	return m, ok
}

// LabelMapForColumn returns the fixed label map of a categorical column.
func LabelMapForColumn(column string) LabelMap {
	switch column {
	case entities.ColumnWeather:
		return WeatherLabels
	case entities.ColumnSeason:
		return SeasonLabels
	case entities.ColumnWeekday:
		return WeekdayLabels
	case entities.ColumnWorkingDay:
		return WorkingDayLabels
	}
	return nil
}

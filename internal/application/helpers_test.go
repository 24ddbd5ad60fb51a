package application

import (
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(day string, weather, workingDay, casual, registered int) entities.RentalRecord {
	return entities.RentalRecord{
		Date:       date(day),
		Season:     1,
		WeatherSit: weather,
		WorkingDay: workingDay,
		Weekday:    int(date(day).Weekday()),
		Temp:       0.2 + float64(casual)/1000,
		ATemp:      0.25,
		Hum:        0.5,
		WindSpeed:  0.1 + float64(registered)/10000,
		Casual:     casual,
		Registered: registered,
	}
}

func testDataset(version string) *entities.Dataset {
	daily := []entities.RentalRecord{
		record("2011-01-01", 2, 0, 331, 654),
		record("2011-01-02", 2, 0, 131, 670),
		record("2011-01-03", 1, 1, 120, 1229),
		record("2011-01-04", 1, 1, 108, 1454),
	}

	var hourly []entities.RentalRecord
	for _, r := range daily[:2] {
		for hour := 0; hour < 24; hour++ {
			h := r
			h.HasHour = true
			h.Hour = hour
			h.Casual = hour + 1
			h.Registered = 2 * (hour + 1)
			hourly = append(hourly, h)
		}
	}

	return &entities.Dataset{
		Daily:    entities.NewTable(entities.GranularityDaily, daily),
		Hourly:   entities.NewTable(entities.GranularityHourly, hourly),
		Version:  version,
		LoadedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func dailyQuery() entities.DashboardQuery {
	return entities.DashboardQuery{
		Granularity: entities.GranularityDaily,
		UserType:    entities.UserTypeCasual,
		Start:       date("2011-01-01"),
		End:         date("2011-01-04"),
		Preview:     true,
	}
}

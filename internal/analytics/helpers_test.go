package analytics

import (
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dailyRecord(date string, weather, casual, registered int) entities.RentalRecord {
	return entities.RentalRecord{
		Date:       day(date),
		Season:     1,
		WeatherSit: weather,
		WorkingDay: 1,
		Weekday:    int(day(date).Weekday()),
		Temp:       0.3,
		ATemp:      0.3,
		Hum:        0.5,
		WindSpeed:  0.2,
		Casual:     casual,
		Registered: registered,
	}
}

func hourlyRecord(date string, hour, casual int) entities.RentalRecord {
	r := dailyRecord(date, 1, casual, casual*2)
	r.HasHour = true
	r.Hour = hour
	return r
}

// derived builds a filtered table whose cnt equals the given counts.
func derived(g entities.Granularity, records []entities.RentalRecord, counts []int) *entities.Table {
	for i := range records {
		records[i].Cnt = counts[i]
	}
	return entities.NewDerivedTable(g, records)
}

func sampleDailyTable() *entities.Table {
	return entities.NewTable(entities.GranularityDaily, []entities.RentalRecord{
		dailyRecord("2011-01-01", 2, 331, 654),
		dailyRecord("2011-01-02", 2, 131, 670),
		dailyRecord("2011-01-03", 1, 120, 1229),
		dailyRecord("2011-01-04", 1, 108, 1454),
		dailyRecord("2011-01-05", 1, 82, 1518),
		dailyRecord("2011-01-06", 3, 88, 1518),
	})
}

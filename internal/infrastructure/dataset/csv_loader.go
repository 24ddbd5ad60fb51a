package dataset

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	"github.com/samber/lo"
)

var dailyColumns = []string{
	entities.ColumnDate,
	entities.ColumnSeason,
	entities.ColumnWeather,
	entities.ColumnWorkingDay,
	entities.ColumnWeekday,
	entities.ColumnTemp,
	entities.ColumnATemp,
	entities.ColumnHum,
	entities.ColumnWindSpeed,
	entities.ColumnCasual,
	entities.ColumnRegistered,
}

var hourlyColumns = append(append([]string{}, dailyColumns...), entities.ColumnHour)

func RequiredColumns(g entities.Granularity) []string {
	if g == entities.GranularityHourly {
		return hourlyColumns
	}
	return dailyColumns
}

type CSVLoader struct {
	dailyPath  string
	hourlyPath string
	dateLayout string
	logger     logger.Logger
}

func NewCSVLoader(dailyPath, hourlyPath, dateLayout string) *CSVLoader {
	if dateLayout == "" {
		dateLayout = "2006-01-02"
	}
	return &CSVLoader{
		dailyPath:  dailyPath,
		hourlyPath: hourlyPath,
		dateLayout: dateLayout,
		logger:     logger.Component("csv_loader"),
	}
}

// Load reads both tables. Any missing file, missing column or malformed
// value fails the whole load.
func (l *CSVLoader) Load(ctx context.Context) (*entities.Dataset, error) {
	daily, err := l.LoadTable(ctx, l.dailyPath, entities.GranularityDaily)
	if err != nil {
		return nil, err
	}

	hourly, err := l.LoadTable(ctx, l.hourlyPath, entities.GranularityHourly)
	if err != nil {
		return nil, err
	}

	dataset := &entities.Dataset{
		Daily:    daily,
		Hourly:   hourly,
		Version:  uuid.New().String(),
		LoadedAt: time.Now(),
	}

	l.logger.WithFields(map[string]interface{}{
		"version":     dataset.Version,
		"daily_rows":  daily.Len(),
		"hourly_rows": hourly.Len(),
	}).Info("Dataset loaded")

	return dataset, nil
}

func (l *CSVLoader) LoadTable(ctx context.Context, path string, g entities.Granularity) (*entities.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s data file: %w", g, err)
	}
	defer file.Close()

	table, err := ReadTable(file, g, l.dateLayout)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	l.logger.Debugf("Read %d %s rows from %s", table.Len(), g, path)
	return table, nil
}

// ReadTable parses CSV content into a table of granularity g. Extra columns
// are ignored.
func ReadTable(r io.Reader, g entities.Granularity, dateLayout string) (*entities.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}

	required := RequiredColumns(g)
	if missing := lo.Without(required, df.Names()...); len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("no rows")
	}

	columns := make(map[string][]string, len(required))
	for _, name := range required {
		columns[name] = df.Col(name).Records()
	}

	records := make([]entities.RentalRecord, df.Nrow())
	for i := range records {
		p := rowParser{columns: columns, row: i}

		record := entities.RentalRecord{
			Date:       p.date(entities.ColumnDate, dateLayout),
			Season:     p.integer(entities.ColumnSeason),
			WeatherSit: p.integer(entities.ColumnWeather),
			WorkingDay: p.integer(entities.ColumnWorkingDay),
			Weekday:    p.integer(entities.ColumnWeekday),
			Temp:       p.float(entities.ColumnTemp),
			ATemp:      p.float(entities.ColumnATemp),
			Hum:        p.float(entities.ColumnHum),
			WindSpeed:  p.float(entities.ColumnWindSpeed),
			Casual:     p.integer(entities.ColumnCasual),
			Registered: p.integer(entities.ColumnRegistered),
		}
		if g == entities.GranularityHourly {
			record.HasHour = true
			record.Hour = p.integer(entities.ColumnHour)
			p.check(record.Hour >= 0 && record.Hour <= 23, entities.ColumnHour, "hour out of range")
		}
		p.check(record.Weekday >= 0 && record.Weekday <= 6, entities.ColumnWeekday, "weekday out of range")
		p.check(record.WorkingDay == 0 || record.WorkingDay == 1, entities.ColumnWorkingDay, "must be 0 or 1")
		p.check(record.Casual >= 0, entities.ColumnCasual, "negative count")
		p.check(record.Registered >= 0, entities.ColumnRegistered, "negative count")

		if p.err != nil {
			return nil, p.err
		}
		records[i] = record
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Hour < records[j].Hour
	})

	return entities.NewTable(g, records), nil
}

// rowParser keeps the first conversion error of a row.
type rowParser struct {
	columns map[string][]string
	row     int
	err     error
}

func (p *rowParser) fail(column, value, reason string) {
	if p.err == nil {
		// +2: header line and 1-based numbering
		p.err = fmt.Errorf("line %d, column %s: %s (%q)", p.row+2, column, reason, value)
	}
}

func (p *rowParser) check(ok bool, column, reason string) {
	if !ok {
		p.fail(column, p.columns[column][p.row], reason)
	}
}

func (p *rowParser) value(column string) string {
	return strings.TrimSpace(p.columns[column][p.row])
}

func (p *rowParser) integer(column string) int {
	raw := p.value(column)
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		p.fail(column, raw, "not an integer")
		return 0
	}
	return int(f)
}

func (p *rowParser) float(column string) float64 {
	raw := p.value(column)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		p.fail(column, raw, "not a number")
		return 0
	}
	return v
}

func (p *rowParser) date(column, layout string) time.Time {
	raw := p.value(column)
	t, err := time.Parse(layout, raw)
	if err != nil {
		p.fail(column, raw, "not a date")
		return time.Time{}
	}
	return entities.DateOnly(t)
}

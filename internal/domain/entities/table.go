package entities

import (
	"time"
)

// Table is an immutable sequence of rental records of one granularity.
// Tables are shared between concurrent readers; every transformation
// produces a new Table.
type Table struct {
	granularity Granularity
	records     []RentalRecord
	derivedCnt  bool
}

func NewTable(granularity Granularity, records []RentalRecord) *Table {
	owned := make([]RentalRecord, len(records))
	copy(owned, records)
	return &Table{granularity: granularity, records: owned}
}

// NewDerivedTable builds a table whose cnt column has been populated.
func NewDerivedTable(granularity Granularity, records []RentalRecord) *Table {
	t := NewTable(granularity, records)
	t.derivedCnt = true
	return t
}

func (t *Table) Granularity() Granularity { return t.granularity }
func (t *Table) Len() int                 { return len(t.records) }
func (t *Table) Empty() bool              { return len(t.records) == 0 }

// HasCnt reports whether the cnt column was derived for this table.
func (t *Table) HasCnt() bool { return t.derivedCnt }

func (t *Table) At(i int) RentalRecord { return t.records[i] }

// Records returns a copy of the rows.
func (t *Table) Records() []RentalRecord {
	out := make([]RentalRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Head returns a copy of at most n leading rows.
func (t *Table) Head(n int) []RentalRecord {
	if n > len(t.records) {
		n = len(t.records)
	}
	if n <= 0 {
		return nil
	}
	out := make([]RentalRecord, n)
	copy(out, t.records[:n])
	return out
}

// DateBounds returns the earliest and latest calendar dates in the table.
func (t *Table) DateBounds() (time.Time, time.Time, bool) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	earliest, latest := t.records[0].Day(), t.records[0].Day()
	for _, r := range t.records[1:] {
		d := r.Day()
		if d.Before(earliest) {
			earliest = d
		}
		if d.After(latest) {
			latest = d
		}
	}
	return earliest, latest, true
}

// Dataset is a loaded pair of daily and hourly tables.
type Dataset struct {
	Daily    *Table
	Hourly   *Table
	Version  string
	LoadedAt time.Time
}

func (d *Dataset) Table(g Granularity) *Table {
	if g == GranularityHourly {
		return d.Hourly
	}
	return d.Daily
}

// Bounds is the selectable date range, taken from the daily table.
func (d *Dataset) Bounds() (DateRange, bool) {
	start, end, ok := d.Daily.DateBounds()
	if !ok {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(r.Start)) && !d.After(DateOnly(r.End))
}

type DatasetInfo struct {
	Version    string    `json:"version"`
	LoadedAt   time.Time `json:"loaded_at"`
	MinDate    string    `json:"min_date"`
	MaxDate    string    `json:"max_date"`
	DailyRows  int       `json:"daily_rows"`
	HourlyRows int       `json:"hourly_rows"`
}

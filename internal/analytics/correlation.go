package analytics

import (
	"fmt"
	"math"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

var DefaultCorrelationColumns = []string{
	entities.ColumnCnt,
	entities.ColumnTemp,
	entities.ColumnATemp,
	entities.ColumnHum,
	entities.ColumnWindSpeed,
}

// Correlate computes the pairwise Pearson matrix over columns, or over
// DefaultCorrelationColumns when none are given.
func Correlate(table *entities.Table, columns ...string) (entities.CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = DefaultCorrelationColumns
	}
	if table == nil || table.Empty() {
		return entities.CorrelationMatrix{}, entities.ErrNoData
	}

	series := make([][]float64, len(columns))
	for i, column := range columns {
		if err := checkMetric(table, column); err != nil {
			return entities.CorrelationMatrix{}, err
		}
		series[i] = lo.Map(table.Records(), func(r entities.RentalRecord, _ int) float64 {
			v, _ := r.Value(column)
			return v
		})
	}

	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		values[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			r := pearson(series[i], series[j])
			values[i][j] = r
			values[j][i] = r
		}
	}

	return entities.CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  values,
	}, nil
}

// pearson returns NaN when either series is constant.
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 || constant(x) || constant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r))
}

func constant(values []float64) bool {
	return lo.EveryBy(values, func(v float64) bool { return v == values[0] })
}

// FormatCoefficient renders a coefficient with two decimals, or n/a when it
// is undefined.
func FormatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

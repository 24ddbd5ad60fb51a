package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/samber/lo"
)

// Distribute summarises metric within each group of groupBy: five-number
// summary plus mean, groups in ascending key order.
func Distribute(table *entities.Table, groupBy, metric string, labels LabelMap) ([]entities.DistributionSummary, error) {
	if metric == "" {
		metric = entities.ColumnCnt
	}
	if table == nil || table.Empty() {
		return nil, entities.ErrNoData
	}
	if err := checkMetric(table, metric); err != nil {
		return nil, err
	}
	if _, ok := table.At(0).Key(groupBy); !ok {
		return nil, fmt.Errorf("%w: cannot group by %q", entities.ErrUnknownColumn, groupBy)
	}

	groups := lo.GroupBy(table.Records(), func(r entities.RentalRecord) int {
		key, _ := r.Key(groupBy)
		return key
	})

	keys := lo.Keys(groups)
	sort.Ints(keys)

	summaries := make([]entities.DistributionSummary, 0, len(keys))
	for _, key := range keys {
		values := lo.Map(groups[key], func(r entities.RentalRecord, _ int) float64 {
			v, _ := r.Value(metric)
			return v
		})
		sort.Float64s(values)

		summaries = append(summaries, entities.DistributionSummary{
			Key:    key,
			Label:  labels.Label(key),
			Count:  len(values),
			Min:    values[0],
			Q1:     quantile(values, 0.25),
			Median: quantile(values, 0.5),
			Q3:     quantile(values, 0.75),
			Max:    values[len(values)-1],
			Mean:   lo.Sum(values) / float64(len(values)),
		})
	}

	return summaries, nil
}

// quantile expects sorted input and interpolates linearly between the two
// nearest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(pos-float64(lower))
}

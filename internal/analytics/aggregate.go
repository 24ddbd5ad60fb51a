package analytics

import (
	"fmt"
	"sort"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/samber/lo"
)

type AggregateOptions struct {
	GroupBy string
	// Metric defaults to cnt.
	Metric string
	// Op defaults to mean.
	Op entities.AggregateOp
	// Order defaults to descending value.
	Order  entities.Ordering
	Labels LabelMap
}

func (o AggregateOptions) withDefaults() AggregateOptions {
	if o.Metric == "" {
		o.Metric = entities.ColumnCnt
	}
	if o.Op == "" {
		o.Op = entities.OpMean
	}
	if o.Order == "" {
		o.Order = entities.OrderValueDesc
	}
	return o
}

// Aggregate groups the table by the raw value of GroupBy and reduces Metric
// within each group. Labels are applied after grouping, so two codes never
// merge even if they share a label.
func Aggregate(table *entities.Table, opts AggregateOptions) (entities.AggregationResult, error) {
	opts = opts.withDefaults()

	result := entities.AggregationResult{
		GroupBy: opts.GroupBy,
		Metric:  opts.Metric,
		Op:      opts.Op,
		Order:   opts.Order,
	}

	if !opts.Op.Valid() {
		return result, fmt.Errorf("unsupported aggregation %q", opts.Op)
	}
	if !opts.Order.Valid() {
		return result, fmt.Errorf("unsupported ordering %q", opts.Order)
	}
	if table == nil || table.Empty() {
		return result, entities.ErrNoData
	}
	if err := checkMetric(table, opts.Metric); err != nil {
		return result, err
	}
	if _, ok := table.At(0).Key(opts.GroupBy); !ok {
		return result, fmt.Errorf("%w: cannot group by %q", entities.ErrUnknownColumn, opts.GroupBy)
	}

	groups := lo.GroupBy(table.Records(), func(r entities.RentalRecord) int {
		key, _ := r.Key(opts.GroupBy)
		return key
	})

	result.Groups = make([]entities.GroupValue, 0, len(groups))
	for key, rows := range groups {
		total := lo.SumBy(rows, func(r entities.RentalRecord) float64 {
			v, _ := r.Value(opts.Metric)
			return v
		})

		value := total
		if opts.Op == entities.OpMean {
			value = total / float64(len(rows))
		}

		result.Groups = append(result.Groups, entities.GroupValue{
			Key:   key,
			Label: opts.Labels.Label(key),
			Value: value,
			Count: len(rows),
		})
	}

	sortGroups(result.Groups, opts.Order)
	return result, nil
}

func sortGroups(groups []entities.GroupValue, order entities.Ordering) {
	sort.SliceStable(groups, func(i, j int) bool {
		if order == entities.OrderValueDesc && groups[i].Value != groups[j].Value {
			return groups[i].Value > groups[j].Value
		}
		return groups[i].Key < groups[j].Key
	})
}

func checkMetric(table *entities.Table, metric string) error {
	if metric == entities.ColumnCnt && !table.HasCnt() {
		return fmt.Errorf("%w: cnt is only available on filtered tables", entities.ErrUnknownColumn)
	}
	if _, ok := table.At(0).Value(metric); !ok {
		return fmt.Errorf("%w: %q", entities.ErrUnknownColumn, metric)
	}
	return nil
}

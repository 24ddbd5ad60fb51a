package entities

type AggregateOp string

const (
	OpMean AggregateOp = "mean"
	OpSum  AggregateOp = "sum"
)

func (o AggregateOp) Valid() bool {
	return o == OpMean || o == OpSum
}

type Ordering string

const (
	// OrderValueDesc sorts groups by aggregated value, largest first.
	OrderValueDesc Ordering = "value_desc"
	// OrderKeyAsc sorts groups by their raw key.
	OrderKeyAsc Ordering = "key_asc"
)

func (o Ordering) Valid() bool {
	return o == OrderValueDesc || o == OrderKeyAsc
}

type GroupValue struct {
	Key   int     `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

type AggregationResult struct {
	GroupBy string       `json:"group_by"`
	Metric  string       `json:"metric"`
	Op      AggregateOp  `json:"op"`
	Order   Ordering     `json:"order"`
	Groups  []GroupValue `json:"groups"`
}

// Labels returns the group labels in result order.
func (r AggregationResult) Labels() []string {
	labels := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		labels[i] = g.Label
	}
	return labels
}

// Values returns the aggregated values in result order.
func (r AggregationResult) Values() []float64 {
	values := make([]float64, len(r.Groups))
	for i, g := range r.Groups {
		values[i] = g.Value
	}
	return values
}

// TotalCount is the number of rows that contributed to the result.
func (r AggregationResult) TotalCount() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Count
	}
	return total
}

type DistributionSummary struct {
	Key    int     `json:"key"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

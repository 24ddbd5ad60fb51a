package analytics

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed charts.yaml
var defaultCatalog []byte

var groupableColumns = []string{
	entities.ColumnSeason,
	entities.ColumnWeather,
	entities.ColumnWorkingDay,
	entities.ColumnWeekday,
	entities.ColumnHour,
}

type ChartSpec struct {
	Name        string               `yaml:"name"`
	Title       string               `yaml:"title"`
	Kind        entities.ChartKind   `yaml:"kind"`
	GroupBy     string               `yaml:"group_by"`
	Metric      string               `yaml:"metric"`
	Op          entities.AggregateOp `yaml:"op"`
	Order       entities.Ordering    `yaml:"order"`
	Labels      string               `yaml:"labels"`
	Granularity entities.Granularity `yaml:"granularity"`
	XLabel      string               `yaml:"x_label"`
	YLabel      string               `yaml:"y_label"`
}

// AppliesTo reports whether the chart is shown for tables of granularity g.
func (s ChartSpec) AppliesTo(g entities.Granularity) bool {
	return s.Granularity == "" || s.Granularity == g
}

func (s ChartSpec) LabelMap() LabelMap {
	m, _ := LabelMapByName(s.Labels)
	return m
}

func (s ChartSpec) Info() entities.ChartInfo {
	return entities.ChartInfo{
		Name:        s.Name,
		Title:       s.Title,
		Kind:        s.Kind,
		Granularity: s.Granularity,
	}
}

// Build aggregates table according to the spec.
func (s ChartSpec) Build(table *entities.Table) (entities.ChartData, error) {
	result, err := Aggregate(table, AggregateOptions{
		GroupBy: s.GroupBy,
		Metric:  s.Metric,
		Op:      s.Op,
		Order:   s.Order,
		Labels:  s.LabelMap(),
	})
	if err != nil {
		return entities.ChartData{}, fmt.Errorf("chart %s: %w", s.Name, err)
	}

	return entities.ChartData{
		Name:   s.Name,
		Title:  s.Title,
		Kind:   s.Kind,
		XLabel: s.XLabel,
		YLabel: s.YLabel,
		Result: result,
	}, nil
}

func (s ChartSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("chart name is required")
	}
	switch s.Kind {
	case entities.ChartKindBar, entities.ChartKindLine, entities.ChartKindDistribution:
	default:
		return fmt.Errorf("chart %s: unknown kind %q", s.Name, s.Kind)
	}
	if !lo.Contains(groupableColumns, s.GroupBy) {
		return fmt.Errorf("chart %s: cannot group by %q", s.Name, s.GroupBy)
	}
	if !s.Op.Valid() {
		return fmt.Errorf("chart %s: unknown op %q", s.Name, s.Op)
	}
	if !s.Order.Valid() {
		return fmt.Errorf("chart %s: unknown order %q", s.Name, s.Order)
	}
	if _, ok := LabelMapByName(s.Labels); !ok {
		return fmt.Errorf("chart %s: unknown label map %q", s.Name, s.Labels)
	}
	switch s.Granularity {
	case "", entities.GranularityDaily, entities.GranularityHourly:
	default:
		return fmt.Errorf("chart %s: unknown granularity %q", s.Name, s.Granularity)
	}
	if s.GroupBy == entities.ColumnHour && s.Granularity != entities.GranularityHourly {
		return fmt.Errorf("chart %s: grouping by hour requires hourly granularity", s.Name)
	}
	return nil
}

type Catalog struct {
	Charts []ChartSpec `yaml:"charts"`
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file, or returns the built-in catalog when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse chart catalog: %w", err)
	}
	if len(catalog.Charts) == 0 {
		return nil, fmt.Errorf("chart catalog is empty")
	}

	seen := make(map[string]bool, len(catalog.Charts))
	for i := range catalog.Charts {
		spec := &catalog.Charts[i]
		if spec.Metric == "" {
			spec.Metric = entities.ColumnCnt
		}
		if spec.Op == "" {
			spec.Op = entities.OpMean
		}
		if spec.Order == "" {
			spec.Order = entities.OrderValueDesc
		}
		if err := spec.validate(); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate chart %q", spec.Name)
		}
		seen[spec.Name] = true
	}

	return &catalog, nil
}

// For returns the charts shown for granularity g, in catalog order.
func (c *Catalog) For(g entities.Granularity) []ChartSpec {
	return lo.Filter(c.Charts, func(s ChartSpec, _ int) bool {
		return s.AppliesTo(g)
	})
}

func (c *Catalog) Find(name string) (ChartSpec, bool) {
	return lo.Find(c.Charts, func(s ChartSpec) bool {
		return s.Name == name
	})
}

package excel

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Summary"
	correlationSheet  = "Correlation"
	distributionSheet = "Working Day Distribution"
	previewSheet      = "Preview"

	maxSheetName = 31
	dateLayout   = "2006-01-02"
)

var (
	coolColor    = "#3B4CC0"
	neutralColor = "#DDDDDD"
	warmColor    = "#B40426"
)

type ExcelGenerator struct {
	logger logger.Logger
}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{
		logger: logger.Component("excel_generator"),
	}
}

// GenerateDashboardReport writes the dashboard view into an xlsx workbook:
// a summary, the correlation matrix, one sheet per chart with a native chart,
// the working-day distribution and the preview rows.
func (e *ExcelGenerator) GenerateDashboardReport(ctx context.Context, view *entities.DashboardView) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("dashboard view is nil")
	}
	if view.Empty {
		return nil, entities.ErrNoData
	}

	q := view.Query
	e.logger.Infof("Generating %s/%s workbook for %s..%s",
		q.Granularity, q.UserType, q.Start.Format(dateLayout), q.End.Format(dateLayout))

	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:       "Bike Rental Dashboard",
		Subject:     "Bike rental analysis",
		Creator:     "Bike Rental Dashboard",
		Description: fmt.Sprintf("%s rentals of %s users, %s to %s", q.Granularity, q.UserType, q.Start.Format(dateLayout), q.End.Format(dateLayout)),
		Created:     view.GeneratedAt.Format(time.RFC3339),
	})

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E8F5"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"summary", func() error { return e.createSummarySheet(f, view, headerStyle) }},
		{"correlation", func() error { return e.createCorrelationSheet(f, view.Correlation, headerStyle) }},
		{"charts", func() error { return e.createChartSheets(ctx, f, view.Charts, headerStyle) }},
		{"distribution", func() error { return e.createDistributionSheet(f, view.Distribution, headerStyle) }},
		{"preview", func() error { return e.createPreviewSheet(f, view.Preview, q.Granularity, headerStyle) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("failed to create %s sheet: %w", step.name, err)
		}
	}

	if idx, err := f.GetSheetIndex(summarySheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}

	e.logger.Infof("Generated workbook with %d charts and %d rows", len(view.Charts), view.Rows)
	return buf.Bytes(), nil
}

func (e *ExcelGenerator) createSummarySheet(f *excelize.File, view *entities.DashboardView, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	q := view.Query
	stats := []struct {
		label string
		value interface{}
	}{
		{"Granularity", string(q.Granularity)},
		{"User Type", string(q.UserType)},
		{"Period Start", q.Start.Format(dateLayout)},
		{"Period End", q.End.Format(dateLayout)},
		{"Rows", view.Rows},
		{"Dataset Version", view.DatasetVersion},
		{"Generated At", view.GeneratedAt.Format(time.RFC3339)},
	}

	for i, stat := range stats {
		row := i + 1
		f.SetCellValue(summarySheet, cell(1, row), stat.label)
		f.SetCellValue(summarySheet, cell(2, row), stat.value)
	}
	f.SetCellStyle(summarySheet, "A1", cell(1, len(stats)), headerStyle)

	f.SetColWidth(summarySheet, "A", "A", 20)
	f.SetColWidth(summarySheet, "B", "B", 40)
	return nil
}

// createCorrelationSheet writes the matrix with a blue-white-red colour
// scale over [-1, 1].
func (e *ExcelGenerator) createCorrelationSheet(f *excelize.File, matrix *entities.CorrelationMatrix, headerStyle int) error {
	if matrix == nil || len(matrix.Columns) == 0 {
		return nil
	}
	if _, err := f.NewSheet(correlationSheet); err != nil {
		return err
	}

	n := len(matrix.Columns)
	for i, column := range matrix.Columns {
		f.SetCellValue(correlationSheet, cell(i+2, 1), column)
		f.SetCellValue(correlationSheet, cell(1, i+2), column)
	}
	f.SetCellStyle(correlationSheet, cell(2, 1), cell(n+1, 1), headerStyle)
	f.SetCellStyle(correlationSheet, cell(1, 2), cell(1, n+1), headerStyle)

	for i, row := range matrix.Values {
		for j, v := range row {
			if math.IsNaN(v) {
				f.SetCellValue(correlationSheet, cell(j+2, i+2), "n/a")
				continue
			}
			f.SetCellValue(correlationSheet, cell(j+2, i+2), math.Round(v*100)/100)
		}
	}

	err := f.SetConditionalFormat(correlationSheet, cell(2, 2)+":"+cell(n+1, n+1), []excelize.ConditionalFormatOptions{
		{
			Type:     "3_color_scale",
			Criteria: "=",
			MinType:  "num",
			MidType:  "num",
			MaxType:  "num",
			MinValue: "-1",
			MidValue: "0",
			MaxValue: "1",
			MinColor: coolColor,
			MidColor: neutralColor,
			MaxColor: warmColor,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set colour scale: %w", err)
	}

	f.SetColWidth(correlationSheet, "A", colLetter(n+1), 12)
	return nil
}

func (e *ExcelGenerator) createChartSheets(ctx context.Context, f *excelize.File, charts []entities.ChartData, headerStyle int) error {
	for _, chart := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(chart.Result.Groups) == 0 {
			continue
		}
		if err := e.createChartSheet(f, chart, headerStyle); err != nil {
			return fmt.Errorf("chart %s: %w", chart.Name, err)
		}
	}
	return nil
}

func (e *ExcelGenerator) createChartSheet(f *excelize.File, chart entities.ChartData, headerStyle int) error {
	sheet := ChartSheetName(chart)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	xLabel := chart.XLabel
	if xLabel == "" {
		xLabel = chart.Result.GroupBy
	}
	yLabel := chart.YLabel
	if yLabel == "" {
		yLabel = fmt.Sprintf("%s(%s)", chart.Result.Op, chart.Result.Metric)
	}

	headers := []string{xLabel, yLabel, "Rows"}
	for i, header := range headers {
		f.SetCellValue(sheet, cell(i+1, 1), header)
	}
	f.SetCellStyle(sheet, "A1", cell(len(headers), 1), headerStyle)

	groups := chart.Result.Groups
	for i, g := range groups {
		row := i + 2
		f.SetCellValue(sheet, cell(1, row), g.Label)
		f.SetCellValue(sheet, cell(2, row), math.Round(g.Value*100)/100)
		f.SetCellValue(sheet, cell(3, row), g.Count)
	}

	chartType := excelize.Col
	if chart.Kind == entities.ChartKindLine {
		chartType = excelize.Line
	}

	last := len(groups) + 1
	err := f.AddChart(sheet, "E2", &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", sheet),
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
			},
		},
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: xLabel}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: yLabel}}},
		Dimension: excelize.ChartDimension{
			Width:  640,
			Height: 360,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", "C", 16)
	return nil
}

func (e *ExcelGenerator) createDistributionSheet(f *excelize.File, distribution []entities.DistributionSummary, headerStyle int) error {
	if len(distribution) == 0 {
		return nil
	}
	if _, err := f.NewSheet(distributionSheet); err != nil {
		return err
	}

	headers := []string{"Group", "Rows", "Min", "Q1", "Median", "Q3", "Max", "Mean"}
	for i, header := range headers {
		f.SetCellValue(distributionSheet, cell(i+1, 1), header)
	}
	f.SetCellStyle(distributionSheet, "A1", cell(len(headers), 1), headerStyle)

	for i, d := range distribution {
		row := i + 2
		values := []interface{}{d.Label, d.Count, d.Min, d.Q1, d.Median, d.Q3, d.Max, math.Round(d.Mean*100) / 100}
		for col, v := range values {
			f.SetCellValue(distributionSheet, cell(col+1, row), v)
		}
	}

	f.SetColWidth(distributionSheet, "A", "A", 16)
	f.SetColWidth(distributionSheet, "B", colLetter(len(headers)), 12)
	return nil
}

func (e *ExcelGenerator) createPreviewSheet(f *excelize.File, rows []entities.RentalRecord, granularity entities.Granularity, headerStyle int) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := f.NewSheet(previewSheet); err != nil {
		return err
	}

	hourly := granularity == entities.GranularityHourly
	headers := []string{entities.ColumnDate}
	if hourly {
		headers = append(headers, entities.ColumnHour)
	}
	headers = append(headers,
		entities.ColumnSeason, entities.ColumnWeather, entities.ColumnWorkingDay, entities.ColumnWeekday,
		entities.ColumnTemp, entities.ColumnATemp, entities.ColumnHum, entities.ColumnWindSpeed,
		entities.ColumnCasual, entities.ColumnRegistered, entities.ColumnCnt,
	)
	for i, header := range headers {
		f.SetCellValue(previewSheet, cell(i+1, 1), header)
	}
	f.SetCellStyle(previewSheet, "A1", cell(len(headers), 1), headerStyle)

	for i, r := range rows {
		row := i + 2
		col := 1
		f.SetCellValue(previewSheet, cell(col, row), r.Date.Format(dateLayout))
		col++
		for _, column := range headers[1:] {
			v, _ := r.Value(column)
			f.SetCellValue(previewSheet, cell(col, row), v)
			col++
		}
	}

	f.SetColWidth(previewSheet, "A", "A", 14)
	f.SetColWidth(previewSheet, "B", colLetter(len(headers)), 11)
	return nil
}

// ChartSheetName derives a worksheet name for a chart that fits Excel's
// 31 character limit.
func ChartSheetName(chart entities.ChartData) string {
	name := "Chart " + chart.Name
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func cell(col, row int) string {
	c, _ := excelize.CoordinatesToCellName(col, row)
	return c
}

func colLetter(col int) string {
	letter, _ := excelize.ColumnNumberToName(col)
	return letter
}

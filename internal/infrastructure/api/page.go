package api

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/analytics"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templatesFS embed.FS

const dashboardTemplate = "dashboard.html"

type pageChart struct {
	Title string
	URL   string
}

type pageData struct {
	Title          string
	Info           entities.DatasetInfo
	Query          entities.DashboardQuery
	View           *entities.DashboardView
	Charts         []pageChart
	Hourly         bool
	ExportsEnabled bool
	ExportURL      string
	Error          string
}

// templates parses the embedded page templates with the helpers they use.
func templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"coefficient": analytics.FormatCoefficient,
		"heatColor":   heatColor,
		"textColor":   textColor,
	}).ParseFS(templatesFS, "templates/*.html"))
}

// Dashboard renders the HTML dashboard. Filter errors are shown on the page
// next to the controls.
func (h *APIHandler) Dashboard(c *gin.Context) {
	data := pageData{
		Title:          "Bike Sharing Dashboard",
		ExportsEnabled: h.opts.ExportsEnabled,
	}

	info, err := h.datasets.Info()
	if err != nil {
		data.Error = err.Error()
		c.HTML(statusFor(err), dashboardTemplate, data)
		return
	}
	data.Info = info

	query, err := h.parseQuery(c)
	if err != nil {
		data.Error = err.Error()
		c.HTML(statusFor(err), dashboardTemplate, data)
		return
	}
	data.Query = query
	data.Hourly = query.Granularity == entities.GranularityHourly

	view, err := h.dashboards.View(c.Request.Context(), query)
	if err != nil {
		data.Error = err.Error()
		c.HTML(statusFor(err), dashboardTemplate, data)
		return
	}
	data.View = view

	params := chartParams(query)
	if !view.Empty {
		data.Charts = lo.Map(h.dashboards.Charts(query.Granularity), func(chart entities.ChartInfo, _ int) pageChart {
			return pageChart{
				Title: chart.Title,
				URL:   fmt.Sprintf("%s/charts/%s?%s", h.opts.BasePath, url.PathEscape(chart.Name), params),
			}
		})
	}
	data.ExportURL = fmt.Sprintf("%s/exports?%s", h.opts.BasePath, params)

	c.HTML(http.StatusOK, dashboardTemplate, data)
}

func chartParams(q entities.DashboardQuery) string {
	values := url.Values{}
	values.Set("granularity", string(q.Granularity))
	values.Set("user_type", string(q.UserType))
	values.Set("start", q.Start.Format(dateLayout))
	values.Set("end", q.End.Format(dateLayout))
	return values.Encode()
}

type rgb struct{ r, g, b float64 }

var (
	coolBlue = rgb{59, 76, 192}
	neutral  = rgb{221, 221, 221}
	warmRed  = rgb{180, 4, 38}
)

// heatColor maps a coefficient in [-1, 1] onto a diverging blue-grey-red
// scale. Undefined coefficients are drawn light grey.
func heatColor(v float64) template.CSS {
	if math.IsNaN(v) {
		return "#f5f5f5"
	}
	v = math.Max(-1, math.Min(1, v))

	from, to, t := neutral, warmRed, v
	if v < 0 {
		from, to, t = neutral, coolBlue, -v
	}
	mix := func(a, b float64) int { return int(math.Round(a + (b-a)*t)) }
	return template.CSS(fmt.Sprintf("#%02x%02x%02x", mix(from.r, to.r), mix(from.g, to.g), mix(from.b, to.b)))
}

func textColor(v float64) template.CSS {
	if !math.IsNaN(v) && math.Abs(v) > 0.6 {
		return "#ffffff"
	}
	return "#222222"
}

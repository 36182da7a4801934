package report

import (
	"slices"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
)

// LineChart draws one line per station for variable, months on the x axis.
// Stations keep their first-seen order; each station's points are put in
// calendar order, and labels that are not month names follow in input order.
func LineChart(records []domain.JoinedRecord, variable string) Figure {
	type point struct {
		month string
		value float64
	}
	var stations []string
	byStation := make(map[string][]point)
	for _, r := range records {
		if r.Value == nil || r.Month == "" || r.Station == "" || !domain.SameVariable(r.Variable, variable) {
			continue
		}
		if _, ok := byStation[r.Station]; !ok {
			stations = append(stations, r.Station)
		}
		byStation[r.Station] = append(byStation[r.Station], point{r.Month, *r.Value})
	}

	fig := Figure{
		Data: []any{},
		Layout: Layout{
			Title:  &Title{Text: variable},
			XAxis:  &Axis{Title: &Title{Text: "MES"}, Type: "category"},
			YAxis:  &Axis{Title: &Title{Text: "VALOR"}},
			Legend: &Legend{Title: &Title{Text: "ESTACIÓN"}},
		},
	}
	for _, station := range stations {
		points := byStation[station]
		slices.SortStableFunc(points, func(a, b point) int {
			return monthRank(a.month) - monthRank(b.month)
		})
		trace := LineTrace{Type: "scatter", Mode: "lines", Name: station, LegendGroup: station}
		for _, p := range points {
			trace.X = append(trace.X, p.month)
			trace.Y = append(trace.Y, p.value)
		}
		fig.Data = append(fig.Data, trace)
	}
	return fig
}

// monthRank orders month labels by calendar position, unknown labels last.
func monthRank(label string) int {
	if i, ok := domain.MonthIndex(label); ok {
		return i
	}
	return 12
}

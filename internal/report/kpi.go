package report

import (
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
)

// KPI is the mean of one variable across all stations and months.
type KPI struct {
	Variable string
	Title    string
	Value    float64
	OK       bool // false when no value was available
}

var kpiSpecs = []struct {
	variable string
	title    string
}{
	{domain.VarTemperature, "Temperatura Promedio (°C)"},
	{domain.VarHumidity, "Humedad Promedio (%)"},
	{domain.VarWindSpeed, "Viento Promedio (km/h)"},
}

// Mean returns the arithmetic mean of the non-nil values of variable,
// matched case-insensitively. ok is false when no value remains.
func Mean(records []domain.JoinedRecord, variable string) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, r := range records {
		if r.Value == nil || !domain.SameVariable(r.Variable, variable) {
			continue
		}
		sum += *r.Value
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ComputeKPIs evaluates the temperature, humidity and wind speed means.
func ComputeKPIs(records []domain.JoinedRecord) []KPI {
	kpis := make([]KPI, 0, len(kpiSpecs))
	for _, spec := range kpiSpecs {
		v, ok := Mean(records, spec.variable)
		kpis = append(kpis, KPI{Variable: spec.variable, Title: spec.title, Value: v, OK: ok})
	}
	return kpis
}

// KPIPanel lays the KPIs out as number indicators on a single row.
func KPIPanel(kpis []KPI) Figure {
	fig := Figure{
		Layout: Layout{
			Title:  &Title{Text: "KPIs Climáticos"},
			Grid:   &Grid{Rows: 1, Columns: len(kpis)},
			Height: 250,
		},
	}
	for i, k := range kpis {
		title := k.Title
		var value *float64
		if k.OK {
			value = domain.Float(k.Value)
		} else {
			title += " (sin datos)"
		}
		fig.Data = append(fig.Data, IndicatorTrace{
			Type:   "indicator",
			Mode:   "number",
			Value:  value,
			Title:  Title{Text: title},
			Number: NumberFormat{ValueFormat: ".2f"},
			Domain: Domain{Row: 0, Column: i},
		})
	}
	return fig
}

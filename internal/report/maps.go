package report

import (
	"math"
	"strings"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
)

// MapVariables are the variables drawn on the temperature maps.
var MapVariables = []string{domain.VarMaxTemperature, domain.VarMinTemperature}

// maxMarkerSize is the diameter in pixels of the largest marker.
const maxMarkerSize = 20

// MapFigure builds the scatter map of variable for one month, or for every
// month when month is domain.AllMonths. Rows without value, coordinates or
// station are dropped; ok is false when nothing is left to draw.
func MapFigure(records []domain.JoinedRecord, month, variable string) (fig Figure, ok bool) {
	trace := ScatterMapTrace{
		Type:          "scattermap",
		Mode:          "markers",
		HoverTemplate: "<b>%{hovertext}</b><br>VALOR=%{marker.color}<extra></extra>",
		Marker: MapMarker{
			SizeMode:   "area",
			ColorScale: "Plasma",
			ShowScale:  true,
			ColorBar:   ColorBar{Title: Title{Text: "VALOR"}},
		},
	}

	var maxSize, sumLat, sumLon float64
	for _, r := range records {
		if month != domain.AllMonths && r.Month != month {
			continue
		}
		if r.Value == nil || !r.HasCoordinates() || r.Station == "" || !domain.SameVariable(r.Variable, variable) {
			continue
		}
		size := math.Abs(*r.Value)
		maxSize = math.Max(maxSize, size)
		sumLat += *r.Lat
		sumLon += *r.Lon
		trace.Lat = append(trace.Lat, *r.Lat)
		trace.Lon = append(trace.Lon, *r.Lon)
		trace.HoverText = append(trace.HoverText, r.Station)
		trace.Marker.Size = append(trace.Marker.Size, size)
		trace.Marker.Color = append(trace.Marker.Color, *r.Value)
	}
	n := len(trace.Lat)
	if n == 0 {
		return Figure{}, false
	}

	trace.Marker.SizeRef = 1
	if maxSize > 0 {
		trace.Marker.SizeRef = 2 * maxSize / (maxMarkerSize * maxMarkerSize)
	}

	return Figure{
		Data: []any{trace},
		Layout: Layout{
			Title:  &Title{Text: MapTitle(variable, month)},
			Height: 500,
			Map: &MapLayout{
				Style:  "open-street-map",
				Zoom:   4,
				Center: LatLonPos{Lat: sumLat / float64(n), Lon: sumLon / float64(n)},
			},
		},
	}, true
}

// MapTitle is the heading of a temperature map, e.g.
// "Mapa de temperatura MÁXIMA - ENERO".
func MapTitle(variable, month string) string {
	return "Mapa de temperatura " + domain.VariableKind(variable) + " - " + month
}

// MapFileName derives the map file name from the variable kind and month,
// e.g. "mapa_máxima_ENERO.html". Spaces become underscores.
func MapFileName(variable, month string) string {
	name := "mapa_" + strings.ToLower(domain.VariableKind(variable)) + "_" + month + ".html"
	return domain.MonthFileLabel(name)
}

// MapMonths lists the map selectors: AllMonths first, then every distinct
// month of records in calendar order.
func MapMonths(records []domain.JoinedRecord) []string {
	labels := make([]string, 0, len(records))
	for _, r := range records {
		labels = append(labels, r.Month)
	}
	return append([]string{domain.AllMonths}, domain.SortMonths(labels)...)
}

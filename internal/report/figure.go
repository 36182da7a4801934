package report

// Figure is a Plotly figure: traces plus layout, serialized as the JSON
// arguments of Plotly.newPlot.
type Figure struct {
	Data   []any  `json:"data"`
	Layout Layout `json:"layout"`
}

// Layout is the subset of the Plotly layout schema used by the report.
type Layout struct {
	Title  *Title     `json:"title,omitempty"`
	Height int        `json:"height,omitempty"`
	Grid   *Grid      `json:"grid,omitempty"`
	XAxis  *Axis      `json:"xaxis,omitempty"`
	YAxis  *Axis      `json:"yaxis,omitempty"`
	Legend *Legend    `json:"legend,omitempty"`
	Map    *MapLayout `json:"map,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Grid struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type Axis struct {
	Title *Title `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

type Legend struct {
	Title *Title `json:"title,omitempty"`
}

// MapLayout configures the tile map used by scattermap traces.
type MapLayout struct {
	Style  string    `json:"style"`
	Zoom   float64   `json:"zoom"`
	Center LatLonPos `json:"center"`
}

type LatLonPos struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Domain struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// IndicatorTrace renders a single number. A nil Value shows no number.
type IndicatorTrace struct {
	Type   string       `json:"type"`
	Mode   string       `json:"mode"`
	Value  *float64     `json:"value"`
	Title  Title        `json:"title"`
	Number NumberFormat `json:"number"`
	Domain Domain       `json:"domain"`
}

type NumberFormat struct {
	ValueFormat string `json:"valueformat,omitempty"`
	Suffix      string `json:"suffix,omitempty"`
}

// LineTrace is a scatter trace drawn with lines, one per station.
type LineTrace struct {
	Type        string    `json:"type"`
	Mode        string    `json:"mode"`
	Name        string    `json:"name"`
	LegendGroup string    `json:"legendgroup"`
	X           []string  `json:"x"`
	Y           []float64 `json:"y"`
}

// ScatterMapTrace places sized, colored markers on a tile map.
type ScatterMapTrace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	Lat           []float64 `json:"lat"`
	Lon           []float64 `json:"lon"`
	HoverText     []string  `json:"hovertext"`
	HoverTemplate string    `json:"hovertemplate"`
	Marker        MapMarker `json:"marker"`
}

type MapMarker struct {
	Size       []float64 `json:"size"`
	SizeMode   string    `json:"sizemode"`
	SizeRef    float64   `json:"sizeref"`
	Color      []float64 `json:"color"`
	ColorScale string    `json:"colorscale"`
	ShowScale  bool      `json:"showscale"`
	ColorBar   ColorBar  `json:"colorbar"`
}

type ColorBar struct {
	Title Title `json:"title"`
}

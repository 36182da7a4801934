package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/google/uuid"
)

// DefaultPlotlyURL is the Plotly bundle loaded by the first fragment. 2.35
// is the first release with scattermap traces.
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var fragmentTmpl = template.Must(template.New("fragment").Parse(
	`{{if .Bootstrap}}<script charset="utf-8" src="{{.Bootstrap}}"></script>
{{end}}<div id="{{.ID}}" class="plotly-graph-div" style="height:{{.Height}}px; width:100%;"></div>
<script type="text/javascript">
Plotly.newPlot({{.ID}}, {{.Data}}, {{.Layout}}, {"responsive": true});
</script>
`))

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>{{.Title}}</title>
</head>
<body>
{{range .Fragments}}{{.}}{{end}}{{if .Footer}}<footer><small>{{.Footer}}</small></footer>
{{end}}</body>
</html>
`))

// renderFragment renders a figure as a div plus its plotting script. Only
// fragments given a bootstrap URL load the Plotly bundle.
func renderFragment(fig Figure, bootstrap string) (template.HTML, error) {
	data, err := toJS(fig.Data)
	if err != nil {
		return "", fmt.Errorf("encode traces: %w", err)
	}
	layout, err := toJS(fig.Layout)
	if err != nil {
		return "", fmt.Errorf("encode layout: %w", err)
	}
	height := fig.Layout.Height
	if height == 0 {
		height = 450
	}

	var buf bytes.Buffer
	err = fragmentTmpl.Execute(&buf, struct {
		Bootstrap string
		ID        string
		Height    int
		Data      template.JS
		Layout    template.JS
	}{bootstrap, uuid.NewString(), height, data, layout})
	if err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// writeDocument wraps rendered fragments into a complete HTML page.
func writeDocument(w io.Writer, title string, fragments []template.HTML, footer string) error {
	return documentTmpl.Execute(w, struct {
		Title     string
		Fragments []template.HTML
		Footer    string
	}{title, fragments, footer})
}

func toJS(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil //nolint:gosec // JSON output
}

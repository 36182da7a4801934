// Package report turns the stored climate table into Plotly charts: a KPI
// panel, one line chart per variable and temperature scatter maps, written
// as standalone map files and as one combined HTML report.
package report

import (
	"bufio"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// LineVariables are charted, in order, after the KPI panel.
var LineVariables = []string{domain.VarTemperature, domain.VarHumidity, domain.VarWindSpeed}

// Options locates the report outputs.
type Options struct {
	ReportPath string
	MapsDir    string
	PlotlyURL  string
}

// Result summarizes what Build wrote.
type Result struct {
	ReportPath string
	MapFiles   []string
	KPIs       []KPI
}

// Files returns every written artifact, report first.
func (r Result) Files() []string {
	return append([]string{r.ReportPath}, r.MapFiles...)
}

// Reporter renders the report from read-back records.
type Reporter struct {
	opts   Options
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates a Reporter. An empty PlotlyURL selects DefaultPlotlyURL.
func New(opts Options, clock clockwork.Clock, logger *slog.Logger) *Reporter {
	if opts.PlotlyURL == "" {
		opts.PlotlyURL = DefaultPlotlyURL
	}
	return &Reporter{opts: opts, clock: clock, logger: logger}
}

// Build writes the per-month map files and the combined report. The report
// holds, in order: the KPI panel, the temperature, humidity and wind line
// charts, and the all-months maximum and minimum temperature maps.
func (r *Reporter) Build(ctx context.Context, records []domain.JoinedRecord, runID string) (Result, error) {
	res := Result{ReportPath: r.opts.ReportPath}

	files, err := r.WriteMonthlyMaps(ctx, records)
	if err != nil {
		return res, err
	}
	res.MapFiles = files

	res.KPIs = ComputeKPIs(records)
	for _, k := range res.KPIs {
		if !k.OK {
			r.logger.Warn("no data for kpi", "variable", k.Variable)
		}
	}

	figures := []Figure{KPIPanel(res.KPIs)}
	for _, v := range LineVariables {
		figures = append(figures, LineChart(records, v))
	}
	for _, v := range MapVariables {
		if fig, ok := MapFigure(records, domain.AllMonths, v); ok {
			figures = append(figures, fig)
		}
	}

	fragments := make([]template.HTML, 0, len(figures))
	for i, fig := range figures {
		bootstrap := ""
		if i == 0 {
			bootstrap = r.opts.PlotlyURL
		}
		frag, err := renderFragment(fig, bootstrap)
		if err != nil {
			return res, err
		}
		fragments = append(fragments, frag)
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	footer := fmt.Sprintf("Generado %s · ejecución %s", r.clock.Now().UTC().Format(time.RFC3339), runID)
	if err := writeHTMLFile(r.opts.ReportPath, "Dashboard climático", fragments, footer); err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}
	r.logger.Info("report written", "path", r.opts.ReportPath, "charts", len(figures))
	return res, nil
}

// WriteMonthlyMaps writes one standalone map per (month, variable) pair with
// data, AllMonths included, into the maps directory. Empty pairs produce no
// file.
func (r *Reporter) WriteMonthlyMaps(ctx context.Context, records []domain.JoinedRecord) ([]string, error) {
	if err := os.MkdirAll(r.opts.MapsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create maps dir: %w", err)
	}

	var written []string
	for _, month := range MapMonths(records) {
		for _, variable := range MapVariables {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			fig, ok := MapFigure(records, month, variable)
			if !ok {
				r.logger.Debug("map skipped, no data", "month", month, "variable", variable)
				continue
			}
			frag, err := renderFragment(fig, r.opts.PlotlyURL)
			if err != nil {
				return written, err
			}
			path := filepath.Join(r.opts.MapsDir, MapFileName(variable, month))
			if err := writeHTMLFile(path, MapTitle(variable, month), []template.HTML{frag}, ""); err != nil {
				return written, fmt.Errorf("write map %s: %w", path, err)
			}
			r.logger.Debug("map written", "path", path)
			written = append(written, path)
		}
	}
	r.logger.Info("maps written", "dir", r.opts.MapsDir, "files", len(written))
	return written, nil
}

func writeHTMLFile(path, title string, fragments []template.HTML, footer string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := writeDocument(w, title, fragments, footer); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Package analysis summarizes each configured observation group and turns the
// results into tables, CSV and charts.
package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/chrissnell/flowerclock/pkg/circular"
	"github.com/chrissnell/flowerclock/pkg/config"
	"github.com/chrissnell/flowerclock/pkg/render"
	"github.com/chrissnell/flowerclock/pkg/solar"
)

// GroupResult is the summary of one observation group
type GroupResult struct {
	Name         string           `json:"name"`
	Color        string           `json:"color"`
	Observations []float64        `json:"observations"`
	Summary      circular.Summary `json:"-"`
	Label        string           `json:"mean_time"`
	MeanFraction float64          `json:"mean_fraction"`
	MeanHours    float64          `json:"mean_hours"`
	R            float64          `json:"resultant_length"`
	Variance     float64          `json:"circular_variance"`
	StdDevHours  float64          `json:"circular_sd_hours"`
}

// Report holds results for every group in configuration order
type Report struct {
	Groups []GroupResult `json:"groups"`
}

// Analyze computes a circular summary for each group. An empty group fails
// the whole report with an error wrapping circular.ErrInvalidInput.
func Analyze(groups []config.GroupData, logger *zap.SugaredLogger) (*Report, error) {
	report := &Report{Groups: make([]GroupResult, 0, len(groups))}

	for _, g := range groups {
		s, err := circular.Group{Name: g.Name, Observations: g.Observations}.Summarize()
		if err != nil {
			return nil, err
		}

		logger.Debugw("summarized group",
			"group", g.Name,
			"n", s.N,
			"mean", s.ClockLabel(),
			"r", s.ResultantLength,
		)

		report.Groups = append(report.Groups, GroupResult{
			Name:         g.Name,
			Color:        g.Color,
			Observations: g.Observations,
			Summary:      s,
			Label:        s.ClockLabel(),
			MeanFraction: s.MeanFraction(),
			MeanHours:    s.MeanHours(),
			R:            s.ResultantLength,
			Variance:     s.Variance(),
			StdDevHours:  finite(s.StdDevHours()),
		})
	}

	return report, nil
}

// finite maps the infinite deviation of a fully dispersed group to -1 so the
// value survives JSON encoding
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return -1
	}
	return v
}

// WriteTable prints a fixed-width summary table
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tN\tMEAN\tR\tVAR\tSD (h)")
	for _, g := range r.Groups {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.3f\t%.4f\t%s\n", g.Name, g.Summary.N, g.Label, g.R, g.Variance, formatSD(g.StdDevHours))
	}
	return tw.Flush()
}

func formatSD(v float64) string {
	if v < 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var csvHeader = []string{
	"group", "n", "mean_time", "mean_fraction", "mean_hours",
	"resultant_length", "circular_variance", "circular_sd_hours",
}

// WriteCSV writes one row per group with a header row
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, g := range r.Groups {
		row := []string{
			g.Name,
			strconv.Itoa(g.Summary.N),
			g.Label,
			strconv.FormatFloat(g.MeanFraction, 'f', 6, 64),
			strconv.FormatFloat(g.MeanHours, 'f', 4, 64),
			strconv.FormatFloat(g.R, 'f', 6, 64),
			strconv.FormatFloat(g.Variance, 'f', 6, 64),
			formatSD(g.StdDevHours),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Chart builds a renderable chart from the report and chart settings
func (r *Report) Chart(cfg *config.ConfigData, night solar.Band) render.Chart {
	chart := render.Chart{
		Title:     cfg.Title,
		Size:      cfg.Render.Size,
		Night:     night,
		TickHours: cfg.Render.TickHours,
		Series:    make([]render.Series, len(r.Groups)),
	}
	for i, g := range r.Groups {
		chart.Series[i] = render.Series{
			Name:         g.Name,
			Color:        g.Color,
			Observations: g.Observations,
			Summary:      g.Summary,
		}
	}
	return chart
}

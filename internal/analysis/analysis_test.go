package analysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrissnell/flowerclock/pkg/circular"
	"github.com/chrissnell/flowerclock/pkg/config"
	"github.com/chrissnell/flowerclock/pkg/solar"
)

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func TestAnalyzeDefaultDataset(t *testing.T) {
	logger, logs := observedLogger()
	cfg := config.Default()

	report, err := Analyze(cfg.Groups, logger)
	require.NoError(t, err)
	require.Len(t, report.Groups, 3)

	expected := []struct {
		name, label string
		n           int
	}{
		{"day", "06:11", 3},
		{"night", "19:15", 7},
		{"hybrid", "23:55", 4},
	}
	for i, e := range expected {
		g := report.Groups[i]
		assert.Equal(t, e.name, g.Name)
		assert.Equal(t, e.label, g.Label)
		assert.Equal(t, e.n, g.Summary.N)
		assert.Greater(t, g.R, 0.99)
		assert.LessOrEqual(t, g.R, 1.0)
		assert.Greater(t, g.StdDevHours, 0.0)
	}

	entries := logs.FilterMessage("summarized group").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "night", entries[1].ContextMap()["group"])
	assert.Equal(t, "19:15", entries[1].ContextMap()["mean"])
}

func TestAnalyzeEmptyGroup(t *testing.T) {
	logger, _ := observedLogger()
	groups := []config.GroupData{
		{Name: "ok", Observations: []float64{0.5}},
		{Name: "empty"},
	}

	report, err := Analyze(groups, logger)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, circular.ErrInvalidInput))
	assert.Contains(t, err.Error(), `"empty"`)
}

func TestAnalyzeDispersedGroup(t *testing.T) {
	logger, _ := observedLogger()
	report, err := Analyze([]config.GroupData{{Name: "spread", Observations: []float64{0, 0.25, 0.5, 0.75}}}, logger)
	require.NoError(t, err)

	g := report.Groups[0]
	assert.InDelta(t, 0, g.R, 1e-12)

	// the result must still encode
	_, err = json.Marshal(report)
	assert.NoError(t, err)
}

func TestWriteTable(t *testing.T) {
	logger, _ := observedLogger()
	report, err := Analyze(config.Default().Groups, logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"GROUP", "N", "MEAN", "R", "VAR", "SD", "(h)"}, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "day")
	assert.Contains(t, lines[1], "06:11")
	assert.Contains(t, lines[2], "19:15")
	assert.Contains(t, lines[3], "hybrid")

	day := strings.Fields(lines[1])
	require.Len(t, day, 6)
	assert.Equal(t, "0.999", day[3])
	assert.Equal(t, "0.0007", day[4], "variance column is 1 - R")
}

func TestWriteCSV(t *testing.T) {
	logger, _ := observedLogger()
	report, err := Analyze(config.Default().Groups, logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{
		"group", "n", "mean_time", "mean_fraction", "mean_hours",
		"resultant_length", "circular_variance", "circular_sd_hours",
	}, records[0])
	assert.Equal(t, []string{"day", "3", "06:11", "0.258103", "6.1945"}, records[1][:5])
	assert.Equal(t, "0.999313", records[1][5])
	assert.Equal(t, "0.000687", records[1][6])
	assert.Equal(t, "0.802564", records[2][3])
	for _, rec := range records[1:] {
		r, err := strconv.ParseFloat(rec[5], 64)
		require.NoError(t, err)
		v, err := strconv.ParseFloat(rec[6], 64)
		require.NoError(t, err)
		assert.InDelta(t, 1, r+v, 2e-6, "%s: variance is 1 - R", rec[0])
	}
}

func TestReportChart(t *testing.T) {
	logger, _ := observedLogger()
	cfg := config.Default()
	report, err := Analyze(cfg.Groups, logger)
	require.NoError(t, err)

	band := solar.Band{StartHour: 18, EndHour: 8}
	chart := report.Chart(cfg, band)

	assert.Equal(t, cfg.Title, chart.Title)
	assert.Equal(t, cfg.Render.Size, chart.Size)
	assert.Equal(t, band, chart.Night)
	require.Len(t, chart.Series, 3)
	assert.Equal(t, "blue", chart.Series[1].Color)
	assert.Equal(t, report.Groups[1].Summary, chart.Series[1].Summary)
	assert.NoError(t, chart.Validate())
}

func hhmm(hour float64) string {
	m := int(math.Round(hour * 60))
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func TestResolveNight(t *testing.T) {
	logger, logs := observedLogger()

	band, err := ResolveNight(config.DefaultNight(), logger)
	require.NoError(t, err)
	assert.Equal(t, solar.Band{StartHour: 18, EndHour: 8}, band)

	band, err = ResolveNight(config.NightData{
		StartHour: 18,
		EndHour:   8,
		Location:  &config.LocationData{Latitude: 35.0, Longitude: 135.77, Date: "2024-07-01", Timezone: "Asia/Tokyo"},
	}, logger)
	require.NoError(t, err)
	assert.InDelta(t, 19.2, band.StartHour, 0.5)
	assert.InDelta(t, 4.9, band.EndHour, 0.5)

	entries := logs.FilterMessage("night band from sunset/sunrise").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, hhmm(band.StartHour), fields["sunset"], "logged sunset matches the band start")
	assert.Equal(t, hhmm(band.EndHour), fields["sunrise"], "logged sunrise matches the band end")

	band, err = ResolveNight(config.NightData{
		StartHour: 20,
		EndHour:   6,
		Location:  &config.LocationData{Latitude: 70.0, Longitude: 25.0, Date: "2024-06-21"},
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, solar.Band{StartHour: 20, EndHour: 6}, band)
	assert.Equal(t, 1, logs.FilterMessageSnippet("using fixed night hours").Len())

	_, err = ResolveNight(config.NightData{
		Location: &config.LocationData{Date: "not a date"},
	}, logger)
	assert.Error(t, err)
}

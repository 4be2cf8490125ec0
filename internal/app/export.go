package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"
	chart "github.com/wcharczuk/go-chart/v2"

	"oceanwatch/internal/earnings"
)

// oceanTimeLayout is the timestamp format used by the OCEAN export.
const oceanTimeLayout = "2006-01-02 15:04"

// Export renders an account ledger as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	account, entries, err := a.fetchEntries(ctx, opts.Account)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.Logger.Info().Str("account", account).Msg("no earnings found for export")
		return nil
	}

	downsampled := downsampleEntries(entries, opts.MaxPoints)
	a.Logger.Info().Str("account", account).Int("total", len(entries)).Int("exported", len(downsampled)).Msg("exporting earnings")

	if opts.CSVPath != "" {
		if err := writeEntriesCSVFile(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := a.writeEntriesPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleEntries(entries []earnings.Entry, max int) []earnings.Entry {
	if max <= 0 || len(entries) <= max {
		return entries
	}
	if max == 1 {
		return entries[:1]
	}

	result := make([]earnings.Entry, 0, max)
	step := float64(len(entries)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(entries) {
			idx = len(entries) - 1
		}
		result = append(result, entries[idx])
	}
	return result
}

func writeEntriesCSVFile(path string, entries []earnings.Entry) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteEntriesCSV(file, entries)
}

// WriteEntriesCSV writes entries with the canonical OCEAN header.
func WriteEntriesCSV(w io.Writer, entries []earnings.Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(earnings.Columns); err != nil {
		return err
	}

	for _, entry := range entries {
		record := []string{
			entry.Time,
			entry.Block,
			entry.ShareLogPct,
			strconv.FormatUint(entry.ShareCount, 10),
			strconv.FormatFloat(entry.EarningsBTC, 'f', -1, 64),
			strconv.FormatFloat(entry.PoolFeesBTC, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (a *App) writeEntriesPNG(path string, entries []earnings.Entry) error {
	// The pool lists newest first; the chart runs oldest to newest.
	chronological := lo.Reverse(append([]earnings.Entry(nil), entries...))

	x := make([]time.Time, 0, len(chronological))
	earned := make([]float64, 0, len(chronological))
	fees := make([]float64, 0, len(chronological))

	for _, entry := range chronological {
		ts, err := time.Parse(oceanTimeLayout, entry.Time)
		if err != nil {
			a.Logger.Warn().Str("time", entry.Time).Msg("skip entry with unrecognised timestamp")
			continue
		}
		x = append(x, ts)
		earned = append(earned, entry.EarningsBTC)
		fees = append(fees, entry.PoolFeesBTC)
	}
	if len(x) < 2 {
		return fmt.Errorf("need at least 2 dated entries to chart, have %d", len(x))
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	btcFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.8f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Earnings (BTC)",
			ValueFormatter: btcFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Pool Fees (BTC)",
			ValueFormatter: btcFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Earnings",
				XValues: x,
				YValues: earned,
			},
			chart.TimeSeries{
				Name:    "Pool Fees",
				XValues: x,
				YValues: fees,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Command crossover runs the moving-average crossover engine once for one ticker and
// prints a report, optionally writing the annotated series and markers as CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"MASentinel/internal/collector"
	"MASentinel/internal/logging"
	"MASentinel/internal/model"
	"MASentinel/internal/recorder"
	"MASentinel/internal/report"
	"MASentinel/internal/strategy"
	"MASentinel/internal/universe"
)

func main() {
	var (
		market       string
		ticker       string
		fromStr      string
		toStr        string
		short        int
		long         int
		csvDir       string
		universeFile string
		outCSV       string
		markersCSV   string
		rawCSV       string
		dbPath       string
		list         bool
		logLevel     string
	)

	flag.StringVar(&market, "market", universe.SP500, "stock market (sp500, cac40, ftse100, nikkei, dax)")
	flag.StringVar(&ticker, "ticker", "", "ticker or Company_Ticker label")
	flag.StringVar(&fromStr, "from", "2017-01-01", "start date (YYYY-MM-DD)")
	flag.StringVar(&toStr, "to", "2022-01-01", "end date (YYYY-MM-DD)")
	flag.IntVar(&short, "short", 20, "short moving average window")
	flag.IntVar(&long, "long", 100, "long moving average window")
	flag.StringVar(&csvDir, "csvdir", "", "optional: read <TICKER>.csv files from this directory instead of Yahoo")
	flag.StringVar(&universeFile, "universe", "configs/universe.yaml", "constituent list file")
	flag.StringVar(&outCSV, "out", "", "optional: write the annotated series to CSV")
	flag.StringVar(&markersCSV, "markers", "", "optional: write buy/sell markers to CSV")
	flag.StringVar(&rawCSV, "raw", "", "optional: write the raw price bars to CSV")
	flag.StringVar(&dbPath, "db", "", "optional: record the run in this SQLite database")
	flag.BoolVar(&list, "list", false, "list the stocks of -market and exit")
	flag.StringVar(&logLevel, "log", "warn", "log level")
	flag.Parse()

	logging.Setup(logLevel, true)
	ctx := context.Background()
	dir := universe.NewDirectory(&universe.YAMLSource{Path: universeFile}, 0)

	if list {
		labels, err := dir.Labels(ctx, market)
		if err != nil {
			fail("list stocks: %v", err)
		}
		fmt.Println(strings.Join(labels, "\n"))
		return
	}

	if ticker == "" {
		fail("-ticker is required")
	}
	company := ""
	if c, tk, err := universe.ParseLabel(ticker); err == nil {
		company, ticker = c, tk
	} else if c, _, ok := dir.Lookup(ctx, ticker); ok {
		company = c.Company
	}

	from, err := time.Parse(time.DateOnly, fromStr)
	if err != nil {
		fail("bad -from: %v", err)
	}
	to, err := time.Parse(time.DateOnly, toStr)
	if err != nil {
		fail("bad -to: %v", err)
	}

	params := strategy.Params{ShortWindow: short, LongWindow: long}
	if err := params.Validate(); err != nil {
		fail("%v", err)
	}
	if params.Degenerate() {
		log.Warn().Int("short", short).Int("long", long).Msg("short window is not shorter than long window")
	}

	var fetcher collector.Fetcher = collector.NewYahooFetcher(os.Getenv("HTTPS_PROXY"))
	if csvDir != "" {
		fetcher = collector.NewCSVFetcher(csvDir)
	}
	series, err := collector.NewCollector(fetcher).Load(ctx, ticker, from, to)
	if err != nil {
		fail("load prices: %v", err)
	}
	if series.Len() == 0 {
		fail("no prices for %s between %s and %s", ticker, fromStr, toStr)
	}

	a, err := strategy.Run(series, params)
	if err != nil {
		fail("run engine: %v", err)
	}
	if err := strategy.RequireHistory(series, long); errors.Is(err, strategy.ErrInsufficientData) {
		log.Warn().Err(err).Msg("long average never defined, no crossover possible")
	}

	sum, err := report.Summarize(a, company)
	if err != nil {
		fail("summarize: %v", err)
	}
	if err := report.WriteText(os.Stdout, sum, 20); err != nil {
		fail("write report: %v", err)
	}

	if rawCSV != "" {
		writeFile(rawCSV, func(f *os.File) error { return collector.WriteBarsCSV(f, series.Bars) })
	}
	if outCSV != "" {
		writeFile(outCSV, func(f *os.File) error { return report.WriteSeriesCSV(f, a) })
	}
	if markersCSV != "" {
		writeFile(markersCSV, func(f *os.File) error { return report.WriteMarkersCSV(f, sum.Markers()) })
	}
	if dbPath != "" {
		record(dbPath, a, series, fetcher.Name(), sum.Markers())
	}
}

func record(dbPath string, a *model.AnnotatedSeries, series *model.PriceSeries, source string, markers []model.Marker) {
	rec, err := recorder.NewSQLiteRecorder(dbPath)
	if err != nil {
		fail("open database: %v", err)
	}
	defer rec.Close()
	id, err := rec.RecordRun(&recorder.RunRecord{Series: a, Start: series.Start, End: series.End, Source: source, Trigger: "CLI"})
	if err != nil {
		fail("record run: %v", err)
	}
	if err := rec.RecordEvents(id, a.Symbol, markers, false); err != nil {
		fail("record events: %v", err)
	}
}

func writeFile(path string, write func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		fail("create %s: %v", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		fail("write %s: %v", path, err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"MASentinel/internal/collector"
	"MASentinel/internal/metrics"
	"MASentinel/internal/model"
	"MASentinel/internal/notifier"
	"MASentinel/internal/recorder"
	"MASentinel/internal/report"
	"MASentinel/internal/strategy"
	"MASentinel/internal/tracker"
	"MASentinel/internal/universe"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist scan on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Collector    *collector.Collector
	Directory    *universe.Directory
	Tracker      *tracker.Manager
	Notifier     Sender // nil disables notifications
	Recorder     recorder.Recorder
	Params       strategy.Params
	LookbackDays int
	Watchlist    []string
	Ctx          context.Context

	now func() time.Time
}

// ScanResult is the outcome of scanning one ticker.
type ScanResult struct {
	Summary *report.Summary
	Side    model.Side
	New     bool // a crossover on the latest bar that had not been notified yet
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, dir *universe.Directory, tm *tracker.Manager,
	sender Sender, rec recorder.Recorder, params strategy.Params, lookbackDays int, watchlist []string) *Scheduler {
	if params.Degenerate() {
		log.Warn().Int("short", params.ShortWindow).Int("long", params.LongWindow).
			Msg("short window is not shorter than long window, crossovers will be degenerate")
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Directory:    dir,
		Tracker:      tm,
		Notifier:     sender,
		Recorder:     rec,
		Params:       params,
		LookbackDays: lookbackDays,
		Watchlist:    watchlist,
		Ctx:          ctx,
		now:          time.Now,
	}
}

// RegisterAll registers the watchlist scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("tickers", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the watchlist scan immediately.
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	log.Info().Msg("running watchlist scan")
	s.Collector.Invalidate()
	var failed int
	for _, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		res, err := s.ScanTicker(s.Ctx, ticker)
		if err != nil {
			failed++
			log.Error().Err(err).Str("ticker", ticker).Msg("scan failed")
			continue
		}
		log.Info().Str("ticker", ticker).Float64("signal", res.Summary.Last.Signal).Bool("new_event", res.New).Msg("ticker scanned")
	}
	if failed > 0 {
		s.trySend(fmt.Sprintf("❌ Scan finished with %d/%d failures", failed, len(s.Watchlist)))
	}
}

func (s *Scheduler) window() (start, end time.Time) {
	end = s.now().UTC()
	return end.AddDate(0, 0, -s.LookbackDays), end
}

func (s *Scheduler) analyze(ctx context.Context, ticker string, p strategy.Params, trigger string) (*model.AnnotatedSeries, *report.Summary, string, error) {
	start, end := s.window()
	series, err := s.Collector.Load(ctx, ticker, start, end)
	if err != nil {
		return nil, nil, "", err
	}
	if err := strategy.RequireHistory(series, p.LongWindow); err != nil {
		return nil, nil, "", err
	}
	a, err := strategy.Run(series, p)
	if err != nil {
		return nil, nil, "", err
	}
	metrics.EngineRunsTotal.WithLabelValues(trigger).Inc()

	runID, err := s.Recorder.RecordRun(&recorder.RunRecord{
		Series: a, Start: series.Start, End: series.End,
		Source: s.Collector.Fetcher.Name(), Trigger: trigger,
	})
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("record run failed")
	}

	company := ""
	if s.Directory != nil {
		if c, _, ok := s.Directory.Lookup(ctx, ticker); ok {
			company = c.Company
		}
	}
	sum, err := report.Summarize(a, company)
	if err != nil {
		return nil, nil, "", err
	}
	return a, sum, runID, nil
}

// ScanTicker analyses the lookback window of ticker and notifies a crossover not seen by earlier scans.
func (s *Scheduler) ScanTicker(ctx context.Context, ticker string) (*ScanResult, error) {
	a, sum, runID, err := s.analyze(ctx, ticker, s.Params, "SCAN")
	if err != nil {
		return nil, err
	}
	res := &ScanResult{Summary: sum}
	res.Side, res.New = s.Tracker.Observe(ticker, sum.Last)
	if !res.New {
		return res, nil
	}

	metrics.CrossoversTotal.WithLabelValues(ticker, string(res.Side)).Inc()
	sent := s.trySend(notifier.FormatCrossoverAlert(sum, res.Side))
	marker := crossoverMarker(a, res.Side)
	if err := s.Recorder.RecordEvents(runID, ticker, []model.Marker{marker}, sent); err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("record crossover failed")
	}
	return res, nil
}

// crossoverMarker returns the most recent marker of side, which may lie before the latest bar
// when scans were missed. It falls back to the latest bar.
func crossoverMarker(a *model.AnnotatedSeries, side model.Side) model.Marker {
	buys, sells := strategy.Markers(a)
	markers := buys
	if side == model.SideSell {
		markers = sells
	}
	if len(markers) > 0 {
		return markers[len(markers)-1]
	}
	last, _ := a.Latest()
	return model.Marker{
		Index: last.Index,
		Time:  last.Time,
		Side:  side,
		Close: last.Close,
		Level: last.ShortAvg.Value,
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "/signal":
		return s.signalCommand(ctx, args)
	case "/history":
		if len(args) != 1 {
			return "Usage: /history TICKER"
		}
		rows, err := s.Recorder.RecentEvents(strings.ToUpper(args[0]), 10)
		if err != nil {
			return fmt.Sprintf("❌ history unavailable: %v", err)
		}
		return notifier.FormatEvents(strings.ToUpper(args[0]), rows)
	case "/markets":
		return notifier.FormatList("Markets", universe.Markets, 0)
	case "/stocks":
		if s.Directory == nil {
			return "No constituent directory configured"
		}
		market := universe.ResolveMarket(strings.Join(args, " "))
		labels, err := s.Directory.Labels(ctx, market)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatList(market, labels, 30)
	case "/watchlist":
		return notifier.FormatList("Watchlist", s.Watchlist, 0)
	case "/scan":
		go s.scanTask()
		return "Scan started"
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /signal TICKER [SHORT LONG]\n• /history TICKER\n• /markets\n• /stocks MARKET\n• /watchlist\n• /scan"

func (s *Scheduler) signalCommand(ctx context.Context, args []string) string {
	const usage = "Usage: /signal TICKER [SHORT LONG]"
	n := len(args)
	if n == 0 {
		return usage
	}

	// Trailing windows are parsed first so labels such as "Apple Inc._AAPL" may contain spaces.
	p := s.Params
	if _, err := strconv.Atoi(args[n-1]); err == nil {
		if n < 3 {
			return usage
		}
		short, err1 := strconv.Atoi(args[n-2])
		long, err2 := strconv.Atoi(args[n-1])
		if err1 != nil || err2 != nil {
			return "Window lengths must be whole numbers"
		}
		p = strategy.Params{ShortWindow: short, LongWindow: long}
		args = args[:n-2]
	}

	ticker := strings.Join(args, " ")
	if _, tk, err := universe.ParseLabel(ticker); err == nil {
		ticker = tk
	} else if len(args) > 1 {
		return usage
	}
	ticker = strings.ToUpper(ticker)
	if err := p.Validate(); err != nil {
		return fmt.Sprintf("❌ %v", err)
	}

	_, sum, _, err := s.analyze(ctx, ticker, p, "COMMAND")
	switch {
	case errors.Is(err, strategy.ErrInsufficientData):
		return fmt.Sprintf("Not enough history for %s to fill a %d-day average", ticker, p.LongWindow)
	case err != nil:
		return fmt.Sprintf("❌ could not analyse %s: %v", ticker, err)
	}
	reply := notifier.FormatSignalReport(sum)
	if p.Degenerate() {
		reply += "\n⚠️ short window is not shorter than long window"
	}
	return reply
}

func (s *Scheduler) trySend(text string) bool {
	if s.Notifier == nil {
		return false
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification failed")
		return false
	}
	return true
}

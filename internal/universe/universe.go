// Package universe is the stock index constituent directory. Constituent lists are loaded
// from a Source and cached per market, and are passed by reference to whoever needs them.
package universe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Market names, as presented to users.
const (
	SP500   = "SP500 (USA)"
	CAC40   = "CAC 40 (France)"
	FTSE100 = "FTSE 100 (Angleterre)"
	Nikkei  = "NIKKEI (Japon)"
	DAX     = "DAX (Allemagne)"
)

// Markets lists the supported indices in display order.
var Markets = []string{SP500, CAC40, FTSE100, Nikkei, DAX}

// ErrBadLabel is returned when a stock label has no ticker part.
var ErrBadLabel = errors.New("stock label must look like Company_Ticker")

// Constituent is one member of an index.
type Constituent struct {
	Company string `yaml:"company"`
	Ticker  string `yaml:"ticker"`
}

// Label is the "Company_Ticker" form shown in stock pickers.
func (c Constituent) Label() string {
	return c.Company + "_" + c.Ticker
}

// ParseLabel splits a "Company_Ticker" label. The ticker is everything after the last underscore.
func ParseLabel(label string) (company, ticker string, err error) {
	i := strings.LastIndex(label, "_")
	if i < 0 || i == len(label)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrBadLabel, label)
	}
	return label[:i], label[i+1:], nil
}

// ResolveMarket maps a user-supplied market name to a supported one. Either the full
// display name or its short key ("sp500", "cac40", "ftse100", "nikkei", "dax") is accepted,
// case-insensitively. Unknown names fall back to DAX.
func ResolveMarket(name string) string {
	k := marketKey(name)
	for _, m := range Markets {
		if marketKey(m) == k {
			return m
		}
	}
	return DAX
}

func marketKey(name string) string {
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// normalize applies per-market conventions: Nikkei codes trade as <code>.T on Yahoo and
// commas are dropped from company names so labels stay splittable.
func normalize(market string, cs []Constituent) []Constituent {
	out := make([]Constituent, 0, len(cs))
	for _, c := range cs {
		c.Company = strings.TrimSpace(strings.ReplaceAll(c.Company, ",", ""))
		c.Ticker = strings.TrimSpace(c.Ticker)
		if c.Ticker == "" {
			continue
		}
		if market == Nikkei && !strings.HasSuffix(c.Ticker, ".T") {
			c.Ticker += ".T"
		}
		out = append(out, c)
	}
	return out
}

// Source provides raw constituent lists.
type Source interface {
	Constituents(ctx context.Context, market string) ([]Constituent, error)
}

type entry struct {
	constituents []Constituent
	loadedAt     time.Time
}

// Directory caches constituent lists per market.
type Directory struct {
	Source Source
	TTL    time.Duration

	mu    sync.Mutex
	cache map[string]entry
	now   func() time.Time
}

// NewDirectory creates a Directory. A zero ttl caches forever.
func NewDirectory(src Source, ttl time.Duration) *Directory {
	return &Directory{Source: src, TTL: ttl, cache: make(map[string]entry), now: time.Now}
}

// Constituents returns the members of market, loading them on first use or after the TTL.
func (d *Directory) Constituents(ctx context.Context, market string) ([]Constituent, error) {
	market = ResolveMarket(market)

	d.mu.Lock()
	e, ok := d.cache[market]
	d.mu.Unlock()
	if ok && (d.TTL == 0 || d.now().Sub(e.loadedAt) < d.TTL) {
		return e.constituents, nil
	}

	raw, err := d.Source.Constituents(ctx, market)
	if err != nil {
		if ok {
			log.Warn().Err(err).Str("market", market).Msg("constituent refresh failed, serving stale list")
			return e.constituents, nil
		}
		return nil, fmt.Errorf("load %s constituents: %w", market, err)
	}
	cs := normalize(market, raw)

	d.mu.Lock()
	d.cache[market] = entry{constituents: cs, loadedAt: d.now()}
	d.mu.Unlock()
	log.Info().Str("market", market).Int("constituents", len(cs)).Msg("constituents loaded")
	return cs, nil
}

// Labels returns the sorted "Company_Ticker" labels of market.
func (d *Directory) Labels(ctx context.Context, market string) ([]string, error) {
	cs, err := d.Constituents(ctx, market)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(cs))
	for i, c := range cs {
		labels[i] = c.Label()
	}
	sort.Strings(labels)
	return labels, nil
}

// Lookup finds a constituent by ticker across all markets.
func (d *Directory) Lookup(ctx context.Context, ticker string) (Constituent, string, bool) {
	for _, m := range Markets {
		cs, err := d.Constituents(ctx, m)
		if err != nil {
			continue
		}
		for _, c := range cs {
			if strings.EqualFold(c.Ticker, ticker) {
				return c, m, true
			}
		}
	}
	return Constituent{}, "", false
}

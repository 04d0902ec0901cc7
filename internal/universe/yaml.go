package universe

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLSource reads constituents from a YAML file keyed by market short name:
//
//	sp500:
//	  - {company: Apple Inc., ticker: AAPL}
//	nikkei:
//	  - {company: Toyota Motor, ticker: "7203"}
type YAMLSource struct {
	Path string
}

func (s *YAMLSource) Constituents(_ context.Context, market string) ([]Constituent, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	var file map[string][]Constituent
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	cs, ok := file[marketKey(market)]
	if !ok {
		return nil, fmt.Errorf("market %q not in %s", market, s.Path)
	}
	return cs, nil
}

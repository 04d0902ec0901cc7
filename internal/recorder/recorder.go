package recorder

import (
	"time"

	"MASentinel/internal/model"
)

// RunRecord describes one engine run over a price series.
type RunRecord struct {
	Series  *model.AnnotatedSeries
	Start   time.Time
	End     time.Time
	Source  string // data source name
	Trigger string // "SCAN", "COMMAND" or "CLI"
}

// EventRow is a persisted crossover event.
type EventRow struct {
	RunID    string
	Symbol   string
	BarTime  time.Time
	Side     model.Side
	Close    float64
	ShortAvg float64
	Notified bool
}

// Recorder persists engine runs and crossover events for later analysis.
type Recorder interface {
	RecordRun(run *RunRecord) (string, error)
	RecordEvents(runID, symbol string, markers []model.Marker, notified bool) error
	RecentEvents(symbol string, limit int) ([]EventRow, error)
	Close() error
}

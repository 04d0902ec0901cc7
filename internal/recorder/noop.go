package recorder

import "MASentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) (string, error)                   { return "", nil }
func (n *NoopRecorder) RecordEvents(_, _ string, _ []model.Marker, _ bool) error { return nil }
func (n *NoopRecorder) RecentEvents(_ string, _ int) ([]EventRow, error)         { return nil, nil }
func (n *NoopRecorder) Close() error                                             { return nil }

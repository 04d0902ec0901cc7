package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "WARN")
	logger.Info().Msg("hidden")
	logger.Warn().Str("symbol", "AAPL").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"symbol":"AAPL"`) {
		t.Errorf("expected structured field in output: %s", out)
	}
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "loud")
	logger.Debug().Msg("debug")
	logger.Info().Msg("info")
	if strings.Contains(buf.String(), `"message":"debug"`) {
		t.Error("debug should be filtered at default level")
	}
	if !strings.Contains(buf.String(), `"message":"info"`) {
		t.Error("info should be logged at default level")
	}
}

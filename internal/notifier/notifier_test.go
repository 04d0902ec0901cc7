package notifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MASentinel/internal/model"
	"MASentinel/internal/recorder"
	"MASentinel/internal/report"
	"MASentinel/internal/strategy"
)

func sampleSummary(t *testing.T) *report.Summary {
	t.Helper()
	closes := []float64{10, 11, 12, 13, 14, 15, 14, 13, 12, 11}
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Symbol: "MC.PA"}
	for i, c := range closes {
		s.Bars = append(s.Bars, model.OHLCV{Time: start.AddDate(0, 0, i), Close: c})
	}
	a, err := strategy.Run(s, strategy.Params{ShortWindow: 2, LongWindow: 4})
	if err != nil {
		t.Fatal(err)
	}
	sum, err := report.Summarize(a, "LVMH & Co")
	if err != nil {
		t.Fatal(err)
	}
	return sum
}

func TestFormatCrossoverAlert(t *testing.T) {
	msg := FormatCrossoverAlert(sampleSummary(t), model.SideSell)
	for _, want := range []string{"SELL", "LVMH &amp; Co (MC.PA)", "MA2: 11.50", "MA4: 12.50", "below"} {
		if !strings.Contains(msg, want) {
			t.Errorf("alert missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatSignalReport(t *testing.T) {
	msg := FormatSignalReport(sampleSummary(t))
	if !strings.Contains(msg, "1 buy / 1 sell") || !strings.Contains(msg, "flat") {
		t.Errorf("unexpected report:\n%s", msg)
	}
}

func TestFormatEventsAndList(t *testing.T) {
	if msg := FormatEvents("X", nil); !strings.Contains(msg, "No recorded") {
		t.Errorf("unexpected empty history: %s", msg)
	}
	rows := []recorder.EventRow{{BarTime: time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC), Side: model.SideBuy, Close: 13}}
	if msg := FormatEvents("X", rows); !strings.Contains(msg, "2021-01-07 BUY @ 13.00") {
		t.Errorf("unexpected history: %s", msg)
	}
	list := FormatList("DAX", []string{"a", "b", "c"}, 2)
	if !strings.Contains(list, "(3)") || !strings.Contains(list, "and 1 more") {
		t.Errorf("unexpected list: %s", list)
	}
}

func TestSend(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.BaseURL = srv.URL
	if err := n.Send("hello"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, `"chat_id":"42"`) || !strings.Contains(body, `"parse_mode":"HTML"`) {
		t.Errorf("unexpected payload: %s", body)
	}

	n.BotToken = "bad"
	if err := n.Send("hello"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestSendWithBackoff(t *testing.T) {
	calls := 0
	send := func(string) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}
	if err := sendWithBackoff(context.Background(), send, "x", 3, time.Millisecond); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	calls = 0
	always := func(string) error { calls++; return errors.New("down") }
	if err := sendWithBackoff(context.Background(), always, "x", 2, time.Millisecond); err == nil {
		t.Error("expected exhausted retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestPoll_DispatchesCommands(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /markets "}},{"update_id":8}]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			b, _ := io.ReadAll(r.Body)
			replies = append(replies, string(b))
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.BaseURL = srv.URL
	var got string
	next, err := n.poll(context.Background(), srv.Client(), 0, func(_ context.Context, cmd string) string {
		got = cmd
		return "ok"
	})
	if err != nil {
		t.Fatal(err)
	}
	if next != 9 {
		t.Errorf("expected next offset 9, got %d", next)
	}
	if got != "/markets" {
		t.Errorf("expected trimmed command, got %q", got)
	}
	if len(replies) != 1 {
		t.Errorf("expected one reply, got %d", len(replies))
	}
}

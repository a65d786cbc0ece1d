package logbuf

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewSink_Defaults(t *testing.T) {
	s := NewSink(Config{})

	if s.config.Capacity != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", s.config.Capacity, DefaultCapacity)
	}
	if s.config.ConsoleWriter == nil || s.config.ErrorWriter == nil {
		t.Error("writers not defaulted")
	}
}

func TestSink_LogAndRecent(t *testing.T) {
	s := NewSink(Config{ErrorWriter: &bytes.Buffer{}})

	s.Info("quotes", "first", nil)
	s.Warn("catalog", "second", map[string]any{"attempt": 1})

	recent := s.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("Recent(10) returned %d entries, want 2", len(recent))
	}
	// Newest first.
	if recent[0].Message != "second" {
		t.Errorf("recent[0].Message = %q, want %q", recent[0].Message, "second")
	}
	if recent[1].Message != "first" {
		t.Errorf("recent[1].Message = %q, want %q", recent[1].Message, "first")
	}
}

func TestSink_RecentDefaultCount(t *testing.T) {
	s := NewSink(Config{})
	for i := 0; i < 80; i++ {
		s.Info("test", fmt.Sprintf("entry %d", i), nil)
	}

	if got := len(s.Recent(0)); got != RecentDefault {
		t.Errorf("Recent(0) returned %d entries, want %d", got, RecentDefault)
	}
}

func TestSink_CapacityEviction(t *testing.T) {
	s := NewSink(Config{Capacity: 1000})

	s.Info("test", "the very first entry", nil)
	for i := 0; i < 1000; i++ {
		s.Info("test", fmt.Sprintf("entry %d", i), nil)
	}

	if s.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", s.Len())
	}
	for _, e := range s.Recent(1000) {
		if e.Message == "the very first entry" {
			t.Error("oldest entry still retained after exceeding capacity")
		}
	}
}

func TestSink_ByLevelAndCategory(t *testing.T) {
	s := NewSink(Config{ErrorWriter: &bytes.Buffer{}})

	s.Debug("quotes", "a", nil)
	s.Error("quotes", "b", nil)
	s.Error("catalog", "c", nil)

	if got := len(s.ByLevel(LevelError)); got != 2 {
		t.Errorf("ByLevel(error) = %d entries, want 2", got)
	}
	if got := len(s.ByCategory("quotes")); got != 2 {
		t.Errorf("ByCategory(quotes) = %d entries, want 2", got)
	}
	if got := len(s.ByCategory("speech")); got != 0 {
		t.Errorf("ByCategory(speech) = %d entries, want 0", got)
	}
}

func TestSink_Listeners(t *testing.T) {
	s := NewSink(Config{})

	s.Info("test", "before registration", nil)

	var order []string
	unsub1 := s.AddListener(func(e Entry) { order = append(order, "first:"+e.Message) })
	defer unsub1()
	unsub2 := s.AddListener(func(e Entry) { order = append(order, "second:"+e.Message) })

	s.Info("test", "one", nil)

	// Registration order, no historical delivery.
	want := []string{"first:one", "second:one"}
	if len(order) != len(want) {
		t.Fatalf("deliveries = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("delivery[%d] = %q, want %q", i, order[i], want[i])
		}
	}

	unsub2()
	s.Info("test", "two", nil)
	if order[len(order)-1] != "first:two" {
		t.Error("unsubscribed listener still notified")
	}
}

func TestSink_ListenerPanicContained(t *testing.T) {
	s := NewSink(Config{})
	s.AddListener(func(Entry) { panic("listener bug") })

	notified := false
	s.AddListener(func(Entry) { notified = true })

	s.Info("test", "still delivered", nil) // must not panic
	if !notified {
		t.Error("listener after panicking one was not notified")
	}
}

func TestSink_Clear(t *testing.T) {
	s := NewSink(Config{})
	s.Info("test", "a", nil)
	s.Info("test", "b", nil)

	var got []Entry
	unsub := s.AddListener(func(e Entry) { got = append(got, e) })
	defer unsub()

	s.Clear()

	if s.Len() != 1 {
		t.Fatalf("Len() after Clear = %d, want 1", s.Len())
	}
	sole := s.Recent(1)[0]
	if sole.Level != LevelInfo || sole.Message != "logs cleared" {
		t.Errorf("announcement entry = %+v", sole)
	}
	if len(got) != 1 {
		t.Errorf("listener deliveries = %d, want 1", len(got))
	}
}

func TestSink_ErrorMirroring(t *testing.T) {
	var errBuf, conBuf bytes.Buffer
	s := NewSink(Config{ErrorWriter: &errBuf, ConsoleWriter: &conBuf})

	s.Info("test", "quiet", nil)
	s.Error("catalog", "boom", map[string]any{"status": 500})

	if !strings.Contains(errBuf.String(), "boom") {
		t.Errorf("error writer missing entry: %q", errBuf.String())
	}
	if conBuf.Len() != 0 {
		t.Errorf("console mirrored outside development mode: %q", conBuf.String())
	}
}

func TestSink_DevelopmentMirroring(t *testing.T) {
	var conBuf bytes.Buffer
	s := NewSink(Config{Development: true, ConsoleWriter: &conBuf, ErrorWriter: &bytes.Buffer{}})

	s.Debug("test", "visible", nil)

	out := conBuf.String()
	if !strings.Contains(out, "visible") {
		t.Fatalf("console writer missing entry: %q", out)
	}
	if !strings.Contains(out, "\x1b[90m") {
		t.Errorf("debug entry not color-coded gray: %q", out)
	}
}

func TestSink_InjectedClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSink(Config{Now: func() time.Time { return now }})

	s.Info("test", "stamped", nil)

	if got := s.Recent(1)[0].Timestamp; !got.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", got, now)
	}
}

func TestSink_ConcurrentUse(t *testing.T) {
	s := NewSink(Config{Capacity: 100})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Log(LevelInfo, "worker", fmt.Sprintf("w%d-%d", n, j), nil)
				s.Recent(10)
				s.ByLevel(LevelInfo)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len() = %d, want 100", s.Len())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

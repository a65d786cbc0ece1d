package logbuf

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents a logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses a string log level. Unknown strings map to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ANSI colors for development console mirroring.
var levelColors = map[Level]string{
	LevelDebug: "\x1b[90m", // gray
	LevelInfo:  "\x1b[34m", // blue
	LevelWarn:  "\x1b[33m", // amber
	LevelError: "\x1b[31m", // red
}

const colorReset = "\x1b[0m"

// Entry is a single immutable log record.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Category  string
	Message   string
	Data      any
}

const (
	// DefaultCapacity is the ring capacity when Config.Capacity is zero.
	DefaultCapacity = 1000

	// RecentDefault is the entry count returned by Recent(0).
	RecentDefault = 50
)

// Config configures a Sink.
type Config struct {
	// Capacity is the maximum number of retained entries.
	// Default: DefaultCapacity.
	Capacity int

	// Development enables color-coded console mirroring of all entries.
	Development bool

	// ConsoleWriter receives development-mode mirrored entries.
	// Default: os.Stdout.
	ConsoleWriter io.Writer

	// ErrorWriter receives error-level entries unconditionally.
	// Default: os.Stderr.
	ErrorWriter io.Writer

	// Now is the clock used for entry timestamps. Default: time.Now.
	Now func() time.Time
}

// Listener receives each new entry synchronously.
type Listener func(Entry)

type listenerEntry struct {
	id int
	fn Listener
}

// Sink is a fixed-capacity, newest-first log ring with listener fan-out.
type Sink struct {
	config Config

	mu        sync.Mutex
	entries   []Entry // index 0 is the newest entry
	listeners []listenerEntry
	nextID    int
}

// NewSink creates a new sink.
func NewSink(config Config) *Sink {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	if config.ConsoleWriter == nil {
		config.ConsoleWriter = os.Stdout
	}
	if config.ErrorWriter == nil {
		config.ErrorWriter = os.Stderr
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Sink{
		config:  config,
		entries: make([]Entry, 0, config.Capacity),
	}
}

// Log appends an entry and notifies listeners in registration order.
// It never fails; mirroring and listener errors are contained here.
func (s *Sink) Log(level Level, category, message string, data any) {
	entry := Entry{
		Timestamp: s.config.Now(),
		Level:     level,
		Category:  category,
		Message:   message,
		Data:      data,
	}
	s.append(entry)
}

// Debug logs a debug-level entry.
func (s *Sink) Debug(category, message string, data any) {
	s.Log(LevelDebug, category, message, data)
}

// Info logs an info-level entry.
func (s *Sink) Info(category, message string, data any) {
	s.Log(LevelInfo, category, message, data)
}

// Warn logs a warn-level entry.
func (s *Sink) Warn(category, message string, data any) {
	s.Log(LevelWarn, category, message, data)
}

// Error logs an error-level entry.
func (s *Sink) Error(category, message string, data any) {
	s.Log(LevelError, category, message, data)
}

func (s *Sink) append(entry Entry) {
	s.mu.Lock()
	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > s.config.Capacity {
		s.entries = s.entries[:s.config.Capacity]
	}
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.notify(listeners, entry)
	s.mirror(entry)
}

// notify delivers the entry outside the sink lock so listeners may log.
func (s *Sink) notify(listeners []listenerEntry, entry Entry) {
	for _, l := range listeners {
		func() {
			defer func() { _ = recover() }() // listener panics must not reach callers
			l.fn(entry)
		}()
	}
}

func (s *Sink) mirror(entry Entry) {
	if entry.Level == LevelError {
		s.write(s.config.ErrorWriter, entry, false)
	}
	if s.config.Development {
		s.write(s.config.ConsoleWriter, entry, true)
	}
}

func (s *Sink) write(w io.Writer, entry Entry, colored bool) {
	defer func() { _ = recover() }()

	line := fmt.Sprintf("[%s] %s: %s", entry.Level, entry.Category, entry.Message)
	if colored {
		line = levelColors[entry.Level] + line + colorReset
	}
	if entry.Data != nil {
		line += fmt.Sprintf(" %v", entry.Data)
	}
	_, _ = fmt.Fprintln(w, line)
}

// AddListener registers a listener and returns its unsubscribe function.
// Listeners do not receive entries logged before registration.
func (s *Sink) AddListener(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
	}
}

// Recent returns up to n entries, newest first. n<=0 returns RecentDefault.
func (s *Sink) Recent(n int) []Entry {
	if n <= 0 {
		n = RecentDefault
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[:n])
	return out
}

// ByLevel returns all retained entries with the given level, newest first.
func (s *Sink) ByLevel(level Level) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// ByCategory returns all retained entries with the given category, newest first.
func (s *Sink) ByCategory(category string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear empties the buffer. The announcement entry becomes the sole retained
// entry and is delivered to listeners.
func (s *Sink) Clear() {
	entry := Entry{
		Timestamp: s.config.Now(),
		Level:     LevelInfo,
		Category:  "logbuf",
		Message:   "logs cleared",
	}

	s.mu.Lock()
	s.entries = s.entries[:0]
	s.entries = append(s.entries, entry)
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.notify(listeners, entry)
	s.mirror(entry)
}

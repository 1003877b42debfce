package absexec

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/rs/zerolog"
)

// LogLevel orders log severities; a logger emits every level up to and
// including its own.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{"ERROR", "WARN", "INFO", "DEBUG"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLogLevel maps a level name to a LogLevel. Unknown names yield
// LevelWarn; "warning" and "trace" are accepted as aliases.
func ParseLogLevel(s string) LogLevel {
	switch name := strings.ToUpper(s); name {
	case "WARNING":
		return LevelWarn
	case "TRACE":
		return LevelDebug
	default:
		for i, n := range levelNames {
			if n == name {
				return LogLevel(i)
			}
		}
		return LevelWarn
	}
}

// Logger receives the interpreter's trace. With attaches fields to every
// subsequent line of the returned logger.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	With(fields map[string]any) Logger
}

const textTimeFormat = "%Y-%m-%dT%H:%M:%SZ"

// textSink is the writer shared by a text logger and its With children.
type textSink struct {
	mu  sync.Mutex
	out io.Writer
}

// textLogger writes lines of the form
//
//	[LEVEL] 2006-01-02T15:04:05Z message key=value ...
//
// with fields in key order.
type textLogger struct {
	sink   *textSink
	level  LogLevel
	fields map[string]any
}

// NewLogger returns a text logger writing to w, or os.Stderr when w is nil.
func NewLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &textLogger{sink: &textSink{out: w}, level: level}
}

func (l *textLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return &textLogger{sink: l.sink, level: l.level, fields: merged}
}

func (l *textLogger) Debugf(format string, args ...any) { l.emit(LevelDebug, format, args) }
func (l *textLogger) Infof(format string, args ...any)  { l.emit(LevelInfo, format, args) }
func (l *textLogger) Warnf(format string, args ...any)  { l.emit(LevelWarn, format, args) }
func (l *textLogger) Errorf(format string, args ...any) { l.emit(LevelError, format, args) }

func (l *textLogger) emit(level LogLevel, format string, args []any) {
	if level > l.level {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s ", level, timefmt.Format(time.Now().UTC(), textTimeFormat))
	fmt.Fprintf(&b, format, args...)
	for _, k := range slices.Sorted(maps.Keys(l.fields)) {
		b.WriteString(" " + k + "=" + fieldText(l.fields[k]))
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, b.String())
}

// fieldText renders a field value, quoting strings that contain spaces or
// control characters.
func fieldText(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		return fmt.Sprint(v)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' }) {
		return strconv.Quote(s)
	}
	return s
}

// jsonLogger writes one JSON object per line through zerolog.
type jsonLogger struct {
	zl zerolog.Logger
}

// NewJSONLogger creates a JSON logger with the given level.
// If w is nil, os.Stderr is used.
func NewJSONLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(zerolog.SyncWriter(w)).With().Timestamp().Logger().Level(zerologLevel(level))
	return &jsonLogger{zl: zl}
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LevelError:
		return zerolog.ErrorLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}

func (l *jsonLogger) Debugf(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }
func (l *jsonLogger) Infof(format string, args ...any)  { l.zl.Info().Msgf(format, args...) }
func (l *jsonLogger) Warnf(format string, args ...any)  { l.zl.Warn().Msgf(format, args...) }
func (l *jsonLogger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }

func (l *jsonLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	strs := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(fmt.Stringer); ok {
			strs[k] = s.String()
			continue
		}
		strs[k] = v
	}
	return &jsonLogger{zl: l.zl.With().Fields(strs).Logger()}
}

type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...any) {}
func (l *noopLogger) Infof(format string, args ...any)  {}
func (l *noopLogger) Warnf(format string, args ...any)  {}
func (l *noopLogger) Errorf(format string, args ...any) {}
func (l *noopLogger) With(fields map[string]any) Logger { return l }

// newLoggerFromOptions picks the logger configured by opts.
func newLoggerFromOptions(opts Options) Logger {
	switch {
	case opts.Logger != nil:
		return opts.Logger
	case opts.LogLevel == "":
		return &noopLogger{}
	case strings.EqualFold(opts.LogFormat, "json"):
		return NewJSONLogger(ParseLogLevel(opts.LogLevel), opts.LogOutput)
	default:
		return NewLogger(ParseLogLevel(opts.LogLevel), opts.LogOutput)
	}
}

// stackPreview renders the top n operand stack entries, top first.
func stackPreview(f *Frame, n int) string {
	if f == nil || f.stack.empty() {
		return "[]"
	}
	data := f.stack.data
	items := make([]string, 0, min(n, len(data)))
	for i := len(data) - 1; i >= 0 && len(items) < n; i-- {
		items = append(items, data[i].String())
	}
	return "[" + truncateList(items, n, len(data)) + "]"
}

// truncateList joins items with "," and appends +N for the hidden rest.
func truncateList(items []string, max, total int) string {
	s := strings.Join(items, ",")
	if total > max && max > 0 {
		s += fmt.Sprintf(",+%d", total-max)
	}
	return s
}

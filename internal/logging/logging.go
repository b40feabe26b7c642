package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = map[Level]string{
	Debug: "debug",
	Info:  "info",
	Warn:  "warn",
	Error: "error",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ParseLevel maps a config value to a Level. Unknown values log at info.
func ParseLevel(raw string) Level {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "warning" {
		return Warn
	}
	for level, candidate := range levelNames {
		if candidate == name {
			return level
		}
	}
	return Info
}

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Logger writes one logfmt line per record: ts, level and msg first, then
// fields bound with With, then the call's own fields.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

// sink is shared by a logger and everything derived from it with With.
type sink struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func (s *sink) write(line []byte) {
	s.mu.Lock()
	_, _ = s.out.Write(line)
	s.mu.Unlock()
}

type recordLogger struct {
	sink  *sink
	min   Level
	bound []byte
}

func New(out io.Writer, level Level) Logger {
	return newLogger(out, level, time.Now)
}

func newLogger(out io.Writer, level Level, now func() time.Time) *recordLogger {
	if out == nil {
		out = os.Stderr
	}
	return &recordLogger{sink: &sink{out: out, now: now}, min: level}
}

// NewFile appends to path, creating its directory. Close the returned
// closer when done.
func NewFile(path string, level Level) (Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return New(file, level), file, nil
}

func (l *recordLogger) Enabled(level Level) bool { return level >= l.min }

func (l *recordLogger) With(fields ...Field) Logger {
	bound := append([]byte{}, l.bound...)
	return &recordLogger{sink: l.sink, min: l.min, bound: appendFields(bound, fields)}
}

func (l *recordLogger) Debug(msg string, fields ...Field) { l.emit(Debug, msg, fields) }
func (l *recordLogger) Info(msg string, fields ...Field)  { l.emit(Info, msg, fields) }
func (l *recordLogger) Warn(msg string, fields ...Field)  { l.emit(Warn, msg, fields) }
func (l *recordLogger) Error(msg string, fields ...Field) { l.emit(Error, msg, fields) }

func (l *recordLogger) emit(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}
	line := make([]byte, 0, 128+len(l.bound))
	line = append(line, "ts="...)
	line = l.sink.now().UTC().AppendFormat(line, time.RFC3339Nano)
	line = append(line, " level="...)
	line = append(line, level.String()...)
	line = append(line, " msg="...)
	line = appendText(line, msg)
	line = append(line, l.bound...)
	line = appendFields(line, fields)
	line = append(line, '\n')
	l.sink.write(line)
}

// appendFields renders " key=value" for each field.
func appendFields(dst []byte, fields []Field) []byte {
	for _, field := range fields {
		dst = append(dst, ' ')
		dst = append(dst, field.Key...)
		dst = append(dst, '=')
		dst = appendValue(dst, field.Value)
	}
	return dst
}

func appendValue(dst []byte, value any) []byte {
	switch v := value.(type) {
	case nil:
		return append(dst, "null"...)
	case string:
		return appendText(dst, v)
	case []byte:
		return appendText(dst, string(v))
	case error:
		return appendText(dst, v.Error())
	case bool:
		return strconv.AppendBool(dst, v)
	case int:
		return strconv.AppendInt(dst, int64(v), 10)
	case int32:
		return strconv.AppendInt(dst, int64(v), 10)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case uint:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint64:
		return strconv.AppendUint(dst, v, 10)
	case float32:
		return strconv.AppendFloat(dst, float64(v), 'g', -1, 32)
	case float64:
		return strconv.AppendFloat(dst, v, 'g', -1, 64)
	case fmt.Stringer:
		return appendText(dst, v.String())
	default:
		return appendText(dst, fmt.Sprint(v))
	}
}

// appendText quotes values that would otherwise split the record.
func appendText(dst []byte, s string) []byte {
	switch {
	case s == "":
		return append(dst, `""`...)
	case strings.ContainsAny(s, " \t\r\n\"="):
		return strconv.AppendQuote(dst, s)
	default:
		return append(dst, s...)
	}
}

type nopLogger struct{}

func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field)   {}
func (nopLogger) Info(string, ...Field)    {}
func (nopLogger) Warn(string, ...Field)    {}
func (nopLogger) Error(string, ...Field)   {}
func (n nopLogger) With(...Field) Logger   { return n }
func (nopLogger) Enabled(level Level) bool { return false }

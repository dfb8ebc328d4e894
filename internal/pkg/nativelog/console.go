package nativelog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	ansiReset  = "\033[0m"
	ansiBlack  = "\033[30m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
	ansiBgRed  = "\033[41m"
)

// hintKey is a field key that switches the status icon instead of printing.
const hintKey = "_hint"

// Ready marks a log line as a successful milestone such as "server listening".
func Ready() zap.Field { return zap.String(hintKey, "ready") }

var consolePool = buffer.NewPool()

// consoleEncoder prints one human readable line per entry for terminals.
// Errors and worse get a red badge.
type consoleEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newConsoleEncoder(color bool) zapcore.Encoder {
	return &consoleEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

// shouldColor honors NO_COLOR.
func shouldColor() bool {
	return os.Getenv("NO_COLOR") == ""
}

func (e *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{MapObjectEncoder: e.copyFields(), color: e.color}
}

func (e *consoleEncoder) copyFields() *zapcore.MapObjectEncoder {
	m := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		m.Fields[k] = v
	}
	return m
}

func (e *consoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	m := e.copyFields()
	for _, f := range fields {
		f.AddTo(m)
	}
	hint, _ := m.Fields[hintKey].(string)
	delete(m.Fields, hintKey)

	buf := consolePool.Get()
	e.paint(buf, ansiGray, entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendByte(' ')

	if entry.Level >= zapcore.ErrorLevel {
		label := " " + strings.ToUpper(entry.Level.String()) + " "
		e.paint(buf, ansiBgRed+ansiBlack, label)
	} else {
		icon, color := levelIcon(entry.Level, hint)
		e.paint(buf, color, icon)
	}
	buf.AppendByte(' ')

	if entry.LoggerName != "" {
		e.paint(buf, ansiYellow, "["+entry.LoggerName+"]")
		buf.AppendByte(' ')
	}
	buf.AppendString(entry.Message)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.AppendByte(' ')
		buf.AppendString(k)
		buf.AppendByte('=')
		buf.AppendString(formatValue(m.Fields[k]))
	}
	if entry.Stack != "" {
		buf.AppendByte('\n')
		buf.AppendString(entry.Stack)
	}
	buf.AppendByte('\n')
	return buf, nil
}

func (e *consoleEncoder) paint(buf *buffer.Buffer, color, text string) {
	if e.color && color != "" {
		buf.AppendString(color)
		buf.AppendString(text)
		buf.AppendString(ansiReset)
		return
	}
	buf.AppendString(text)
}

func levelIcon(level zapcore.Level, hint string) (string, string) {
	if hint == "ready" {
		return "✔", ansiGreen
	}
	switch level {
	case zapcore.DebugLevel:
		return "⚙", ansiGray
	case zapcore.WarnLevel:
		return "⚠", ansiYellow
	default:
		return "ℹ", ansiCyan
	}
}

func formatValue(v any) string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case time.Time:
		s = val.Format(time.RFC3339)
	case time.Duration:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	if s == "" || strings.ContainsAny(s, " \"=\n\r\t") {
		return strconv.Quote(s)
	}
	return s
}

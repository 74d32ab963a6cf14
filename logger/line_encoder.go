package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// timeLayout matches the timestamps operators already grep for in the
// function logs: day-month-year, 24h clock.
const timeLayout = "02-01-06 15:04:05"

var linePool = buffer.NewPool()

// lineEncoder writes one plain line per entry:
//
//	17-10-26 06:00:01 [INFO] pipeline: POST https://store.example/api count=42
//
// Context fields added with With() are kept in the embedded map encoder so
// they survive Clone and appear on every line.
type lineEncoder struct {
	*zapcore.MapObjectEncoder
}

func newLineEncoder() *lineEncoder {
	return &lineEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *lineEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &lineEncoder{MapObjectEncoder: clone}
}

func (enc *lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	all := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		all.Fields[k] = v
	}
	for _, f := range fields {
		f.AddTo(all)
	}

	line := linePool.Get()
	line.AppendString(ent.Time.Format(timeLayout))
	line.AppendString(" [")
	line.AppendString(ent.Level.CapitalString())
	line.AppendString("] ")
	if ent.LoggerName != "" {
		line.AppendString(ent.LoggerName)
		line.AppendString(": ")
	}
	line.AppendString(ent.Message)

	if len(all.Fields) > 0 {
		line.AppendString(" ")
		line.AppendString(formatFields(all.Fields))
	}

	line.AppendString("\n")
	return line, nil
}

// formatFields renders fields as sorted key=value pairs; values containing
// spaces are quoted.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fmt.Sprintf("%v", fields[k])
		if strings.ContainsAny(v, " \t") {
			v = fmt.Sprintf("%q", v)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}

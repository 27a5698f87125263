// Package qlog is a thin leveled wrapper over the standard library log
// package, used by the parser and executor for trace-level diagnostics.
package qlog

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Root is the package-level logger used by default. Replace with SetOutput
// or by assigning a different Logger.
var Root Logger = &Default{}

// Logger is implemented by anything that can record leveled, tagged
// messages. The variadic arguments are key/value pairs; keys must be
// strings.
type Logger interface {
	Trace(string, ...any)
	Debug(string, ...any)
	Error(string, ...any)
	With(...any) Logger
}

// Default logs through the standard library logger with a level prefix
// and trailing key=value tags.
type Default struct {
	Tags []any
}

func (l *Default) Trace(m string, kv ...any) { log.Print(tfmt("TRC ", m, kv, l.Tags)) }
func (l *Default) Debug(m string, kv ...any) { log.Print(tfmt("DBG ", m, kv, l.Tags)) }
func (l *Default) Error(m string, kv ...any) { log.Print(tfmt("ERR ", m, kv, l.Tags)) }

// With returns a child logger with extra tags, shadowing none of the
// parent's tags — both sets are kept.
func (l *Default) With(tags ...any) Logger {
	t := make([]any, 0, len(tags)+len(l.Tags))
	t = append(t, tags...)
	t = append(t, l.Tags...)
	return &Default{Tags: t}
}

// SetOutput redirects the package's log output, letting callers silence
// it (io.Discard) during tests or point it at a file.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func tfmt(lvl, msg string, all ...[]any) string {
	var b strings.Builder
	b.WriteString(lvl)
	b.WriteString(msg)
	for _, tags := range all {
		for i, v := range tags {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}

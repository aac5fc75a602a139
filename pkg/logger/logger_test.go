package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	level   string
	message string
	keyvals []any
}

type recorder struct {
	entries []entry
}

func (r *recorder) add(level, message string, keyvals []any) {
	r.entries = append(r.entries, entry{level: level, message: message, keyvals: keyvals})
}

func (r *recorder) Log(message string, keyvals ...any)   { r.add("log", message, keyvals) }
func (r *recorder) Debug(message string, keyvals ...any) { r.add("debug", message, keyvals) }
func (r *recorder) Info(message string, keyvals ...any)  { r.add("info", message, keyvals) }
func (r *recorder) Warn(message string, keyvals ...any)  { r.add("warn", message, keyvals) }
func (r *recorder) Error(message string, keyvals ...any) { r.add("error", message, keyvals) }
func (r *recorder) Fatal(message string, keyvals ...any) { r.add("fatal", message, keyvals) }

func TestDispatchToAllInstances(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	Init(first, second)
	t.Cleanup(func() { Init() })

	Log("[Graph] plain", "graph", "g1")
	Warn("[Graph] careful", "edges", 3)

	for _, r := range []*recorder{first, second} {
		assert.Equal(t, []entry{
			{level: "log", message: "[Graph] plain", keyvals: []any{"graph", "g1"}},
			{level: "warn", message: "[Graph] careful", keyvals: []any{"edges", 3}},
		}, r.entries)
	}
}

func TestNoInstancesIsSilent(t *testing.T) {
	Init()
	assert.NotPanics(t, func() {
		Info("nothing to see")
		Error("still nothing")
	})
}

package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/prisma/output"
)

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}
	timer := collector.Start("test")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background()).(noOpCollector)
	assert.True(t, ok)

	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	got, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok)
	assert.True(t, got == collector)
}

func TestTimingCollectorTree(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("prisma.LoadGrammars")
	decode := root.Child("loader.Decode")
	decode.End()
	register := root.Child("grammar.Register")
	compile := register.Child("compile javascript")
	compile.End()
	register.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "prisma.LoadGrammars: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ loader.Decode: "))
	assert.True(t, strings.HasPrefix(lines[2], "└─ grammar.Register: "))
	assert.True(t, strings.HasPrefix(lines[3], "   └─ compile javascript: "))
}

func TestTimingCollectorNestsRunningStarts(t *testing.T) {
	collector := NewTimingCollector()

	outer := collector.Start("outer")
	inner := collector.Start("inner")
	inner.End()
	outer.End()
	second := collector.Start("second")
	second.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	out := buf.String()
	assert.Contains(t, out, "outer: ")
	assert.Contains(t, out, "└─ inner: ")
	assert.Contains(t, out, "\nsecond: ")
}

func TestTimingCollectorStyledReport(t *testing.T) {
	collector := NewTimingCollector()
	timer := collector.Start("tokenize")
	timer.Child("javascript").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, output.NewStyles(&bytes.Buffer{}))
	assert.Contains(t, buf.String(), "tokenize")
	assert.Contains(t, buf.String(), "javascript")
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{time.Millisecond, "1ms"},
		{100 * time.Millisecond, "100ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}

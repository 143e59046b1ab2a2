package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(format string, args ...any) { r.lines = append(r.lines, "debug:"+format) }
func (r *recordingLogger) Info(format string, args ...any)  { r.lines = append(r.lines, "info:"+format) }
func (r *recordingLogger) Warn(format string, args ...any)  { r.lines = append(r.lines, "warn:"+format) }
func (r *recordingLogger) Error(format string, args ...any) { r.lines = append(r.lines, "error:"+format) }

func TestOrNopHandlesTypedNil(t *testing.T) {
	var typed *recordingLogger
	assert.True(t, IsNil(typed))
	assert.NotPanics(t, func() { OrNop(typed).Info("ignored") })
}

func TestMultiFansOutAndFlattens(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	logger := Multi(Multi(a, nil), b)
	logger.Warn("careful")

	assert.Equal(t, []string{"warn:careful"}, a.lines)
	assert.Equal(t, []string{"warn:careful"}, b.lines)
	assert.Equal(t, a, Multi(nil, a))
}

func TestFromSlogFormatsAndTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger := FromSlog(base, "engine")

	logger.Debug("hidden %d", 1)
	logger.Info("translated %d objectives", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "translated 3 objectives")
	assert.Contains(t, out, "component=engine")
}

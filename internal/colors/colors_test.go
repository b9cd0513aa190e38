package colors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	entries []string
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.entries = append(r.entries, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.entries = append(r.entries, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.entries = append(r.entries, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, args ...any) { r.entries = append(r.entries, "error:"+msg) }

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(nil, nil) })
	return &out, &errOut
}

func TestError(t *testing.T) {
	_, errOut := captureOutput(t)

	Error("something went wrong")

	assert.Contains(t, errOut.String(), "Error:")
	assert.Contains(t, errOut.String(), "something went wrong")
	assert.Contains(t, errOut.String(), Red)
}

func TestSuccessAndInfoGoToStdout(t *testing.T) {
	out, errOut := captureOutput(t)

	Success("withdrawal approved")
	Info("polling every 30s")

	assert.Contains(t, out.String(), checkmark)
	assert.Contains(t, out.String(), "withdrawal approved")
	assert.Contains(t, out.String(), "polling every 30s")
	assert.Empty(t, errOut.String())
}

func TestQuietSuppressesInfo(t *testing.T) {
	out, _ := captureOutput(t)
	SetQuiet(true)
	t.Cleanup(func() { SetQuiet(false) })

	Info("hidden")
	Success("hidden too")

	assert.Empty(t, out.String())
}

func TestDebugRequiresFlag(t *testing.T) {
	_, errOut := captureOutput(t)
	SetDebug(false)

	Debug("invisible")
	require.Empty(t, errOut.String())

	SetDebug(true)
	t.Cleanup(func() { SetDebug(false) })
	Debug("visible")
	assert.Contains(t, errOut.String(), "visible")
}

func TestMirrorsToLogger(t *testing.T) {
	captureOutput(t)
	rec := &recordingLogger{}
	SetLogger(rec)
	t.Cleanup(func() { SetLogger(nil) })

	Warning("careful")
	Error("boom")

	assert.Equal(t, []string{"warn:careful", "error:boom"}, rec.entries)
}

package coroexec

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogger_RoutesBySeverity(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewEventLogger(LevelInfo, &out, &errOut)

	l.Log(Entry{Level: LevelInfo, Category: "context", Message: "hello"})
	assert.Contains(t, out.String(), `"msg":"hello"`)
	assert.Empty(t, errOut.String())

	l.Log(Entry{Level: LevelError, Category: "service", Message: "boom"})
	assert.Contains(t, errOut.String(), `"msg":"boom"`)
}

func TestEventLogger_RespectsLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewEventLogger(LevelWarn, &out, &errOut)

	l.Log(Entry{Level: LevelDebug, Category: "context", Message: "should be dropped"})
	assert.Empty(t, out.String())

	l.Log(Entry{Level: LevelWarn, Category: "context", Message: "should appear"})
	assert.Contains(t, out.String(), "should appear")
}

func TestNoopLogger_DiscardsEverything(t *testing.T) {
	l := NoopLogger()
	require.False(t, l.Enabled(LevelError))
	l.Log(Entry{Level: LevelError, Message: "ignored"})
}

func TestFormatTimestamp_MatchesSpecFormat(t *testing.T) {
	ts := formatTimestamp(time.Now())
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}$`, ts)
}

package log

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoglevelNames(t *testing.T) {
	assert.Equal(t, "DEBUG", Ldebug.String())
	assert.Equal(t, "ERROR", Lerror.String())
	assert.Equal(t, "WARN", Lwarn.String())
	assert.Equal(t, "INFO", Linfo.String())
	assert.Equal(t, "SILENT", Lsilent.String())
}

func TestLoglevelFromString(t *testing.T) {
	assert.Equal(t, Ldebug, FromString("debug"))
	assert.Equal(t, Lerror, FromString("error"))
	assert.Equal(t, Lwarn, FromString("warn"))
	assert.Equal(t, Lwarn, FromString("warning"))
	assert.Equal(t, Linfo, FromString("info"))
	assert.Equal(t, Lsilent, FromString("silent"))
	assert.Equal(t, Linfo, FromString("gibberish"))
}

func TestLogColorToNotTTY(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	w := NewConsoleWriter(writer, Linfo, true).(*syncWriter)
	formatter := w.writer.(*consoleWriter).formatter.(*consoleFormatter)

	assert.NotEqual(t, true, formatter.color, "Color should not be used on a buffer logger")
}

func TestLogComponent(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("component").WithOutput(NewConsoleWriter(writer, Ldebug, false))

	logger.Info().Log("hello")
	writer.Flush()

	assert.Contains(t, buffer.String(), `component="component"`)
	assert.Contains(t, buffer.String(), `msg="hello"`)
}

func TestLogLevelFilter(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("test").WithOutput(NewConsoleWriter(writer, Lwarn, false))

	logger.Debug().Log("debug")
	logger.Info().Log("info")
	writer.Flush()

	require.Equal(t, 0, buffer.Len())

	logger.Warn().Log("warn")
	logger.Error().Log("error")
	writer.Flush()

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Equal(t, 2, len(lines))
}

func TestLogFields(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("test").WithOutput(NewConsoleWriter(writer, Ldebug, false))

	logger.WithFields(Fields{
		"count":  42,
		"flag":   true,
		"name":   "foobar",
	}).Info().Log("fields")
	writer.Flush()

	line := buffer.String()

	assert.Contains(t, line, "count=42")
	assert.Contains(t, line, "flag=true")
	assert.Contains(t, line, `name="foobar"`)
}

func TestLogError(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("test").WithOutput(NewConsoleWriter(writer, Ldebug, false))

	logger.WithError(fmt.Errorf("it exploded")).Error().Log("failed")
	writer.Flush()

	assert.Contains(t, buffer.String(), `error="it exploded"`)
}

func TestLogCloneImmutable(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("test").WithOutput(NewConsoleWriter(writer, Ldebug, false))

	derived := logger.WithField("key", "value")

	logger.Info().Log("plain")
	writer.Flush()

	assert.NotContains(t, buffer.String(), `key=`)
	buffer.Reset()

	derived.Info().Log("derived")
	writer.Flush()

	assert.Contains(t, buffer.String(), `key="value"`)
}

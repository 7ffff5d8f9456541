package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/def"
	"github.com/njtc406/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOut(&buf), WithLevel(logrus.WarnLevel), WithColor(false))

	logger.Info("hidden")
	logger.WithField("pool", "bullet").Warn("over warning count")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "over warning count")
	assert.Contains(t, out, "pool=bullet")
}

func TestNewDefaultLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewDefaultLogger(dir, &LoggerConf{Name: "system", Level: "debug"}, false)
	require.NoError(t, err)

	logger.Debug("hello pool")
	Release(logger)

	files, err := filepath.Glob(filepath.Join(dir, "system_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello pool")
}

func TestNewDefaultLoggerAsync(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewDefaultLogger(dir, &LoggerConf{
		Name:         "async",
		RotationTime: time.Hour,
		AsyncMode:    &AsyncMode{Enable: true, Config: &ChannelWriterConfig{FlushInterval: time.Hour}},
	}, false)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		logger.Infof("line %d", i)
	}
	// 关闭时把缓冲区刷到文件
	Release(logger)

	files, err := filepath.Glob(filepath.Join(dir, "async_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(data), "line "))
}

func TestNewDefaultLoggerBadRotation(t *testing.T) {
	_, err := NewDefaultLogger(t.TempDir(), &LoggerConf{Name: "x", RotationTime: time.Second}, false)
	assert.ErrorIs(t, err, def.ErrRotationTime)
}

func TestChannelWriterAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w := NewChannelWriter(&buf, nil)
	_, err := w.Write([]byte("a"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "ab", buf.String())
}

func TestDefaultFallback(t *testing.T) {
	if SysLogger != nil {
		t.Skip("system logger initialised")
	}
	assert.NotNil(t, Default())
	assert.Same(t, Default(), Default())
}

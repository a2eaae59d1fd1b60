package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
	}{
		{name: "production", opts: Options{}, wantDebug: false},
		{name: "debug", opts: Options{Debug: true}, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.opts)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, tt.wantDebug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bizfly-s3.log")
	l, err := New(Options{File: file})
	require.NoError(t, err)

	l.Info("uploaded", zap.String("checksum", "abc"))
	_ = l.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"[INFO]"`)
	assert.Contains(t, string(data), `"message":"uploaded"`)
	assert.Contains(t, string(data), `"checksum":"abc"`)
}

func TestEncoders(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, enc.AddArray("v", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		SyslogTimeEncoder(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), ae)
		CustomLevelEncoder(zapcore.WarnLevel, ae)
		return nil
	})))
	assert.Equal(t, []interface{}{"2020-01-02 03:04:05", "[WARN]"}, enc.Fields["v"])
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"console", "info", "console", false},
		{"json", "debug", "json", false},
		{"empty format", "warn", "", false},
		{"unknown format", "info", "xml", true},
		{"unknown level", "loud", "console", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := InitLogger(tt.level, tt.format, "")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestInitLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr.log")

	log, err := InitLogger("info", "json", path)
	require.NoError(t, err)
	log.Info("写入日志文件")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "写入日志文件")
}

func TestInitLogger_BadFile(t *testing.T) {
	_, err := InitLogger("info", "json", filepath.Join(t.TempDir(), "missing", "ocr.log"))
	assert.Error(t, err)
}

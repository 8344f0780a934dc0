package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	WithContext(map[string]interface{}{"request_id": "req-1"}).
		Error("analysis failed", errors.New("boom"), map[string]interface{}{"review_id": "r-1"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "analysis failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "r-1", entry["review_id"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})

	Info("hidden")
	assert.Empty(t, buf.String())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_FileRotationWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "json", Output: &buf, FilePath: path})

	Info("written to both")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to both")
	assert.Contains(t, buf.String(), "written to both")
}

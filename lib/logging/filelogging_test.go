package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileName(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "/var/log/muhasebe-2024-03-09.log", LogFileName("/var/log/muhasebe.log", day))
	assert.Equal(t, "/var/log/muhasebe-2024-03-09.log", LogFileName("/var/log/muhasebe", day))
	assert.Equal(t, "app-2024-03-09.json", LogFileName("app.json", day))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.INFO, ParseLevel("INFO"))
	assert.Equal(t, log.WARN, ParseLevel("warning"))
	assert.Equal(t, log.ERROR, ParseLevel("error"))
	assert.Equal(t, log.DEBUG, ParseLevel(""))
	assert.Equal(t, log.DEBUG, ParseLevel("verbose"))
}

func TestLoggerWritesToDatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.log")

	logger := Logger(path, "info")
	logger.Info("hello")

	matches, err := filepath.Glob(filepath.Join(dir, "ledger-*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

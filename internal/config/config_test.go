package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "DB_DRIVER=sqlite\n" +
		"SQLITE_PATH=/tmp/storefront.db\n" +
		"AUTH_TOKEN_KEY=0123456789abcdef0123456789abcdef\n" +
		"KAFKA_BROKERS=localhost:9092, localhost:9093\n" +
		"CATALOG_CACHE_TTL=5s\n" +
		"REPORT_TIMEZONE=Asia/Taipei\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cf, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cf.DbDriver)
	assert.Equal(t, "/tmp/storefront.db", cf.SqlitePath)
	assert.Equal(t, 5*time.Second, cf.CatalogCacheTTL)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, cf.KafkaBrokerList())
	assert.Equal(t, "8080", cf.ServerPort)
	assert.Equal(t, "Asia/Taipei", cf.ReportLocation().String())
	assert.NoError(t, cf.Validate())
}

func TestValidate(t *testing.T) {
	cf := &Config{DbDriver: "mysql", AuthTokenKey: "0123456789abcdef0123456789abcdef"}
	assert.Error(t, cf.Validate())

	cf.DbDriver = "postgres"
	assert.Error(t, cf.Validate())

	cf.DbHost, cf.DbName = "localhost", "storefront"
	assert.NoError(t, cf.Validate())

	cf.AuthTokenKey = "short"
	assert.Error(t, cf.Validate())
}

func TestReportLocationFallsBackToUTC(t *testing.T) {
	cf := &Config{ReportTimezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cf.ReportLocation())
	assert.Empty(t, (&Config{}).KafkaBrokerList())
}

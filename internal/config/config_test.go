package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8091", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Server.LedgerSize)
	assert.Equal(t, []string{"storage-events", "provision-commands"}, cfg.Kafka.Topics)
	assert.Equal(t, "ddOrgSecret", cfg.Vault.SecretName)
	assert.Equal(t, "datadoghq.com", cfg.Datadog.Site)
	assert.Equal(t, 10*time.Second, cfg.Datadog.Timeout())
	assert.Equal(t, 30, cfg.TTL.RetentionDays)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATADOG_SITE", "datadoghq.eu")
	t.Setenv("SECRET_NAME", "prodOrgSecret")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "datadoghq.eu", cfg.Datadog.Site)
	assert.Equal(t, "prodOrgSecret", cfg.Vault.SecretName)
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5433, Name: "n", User: "u", Password: "p"}
	assert.Equal(t, "host=h port=5433 dbname=n user=u password=p sslmode=disable", d.DSN())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.Storage)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "100", cfg.Approval.AdjustmentQuantity.String())
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_ListaDeBrokers(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("APPROVAL_TRANSFER_QTY", "no-es-numero")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "500", cfg.Approval.TransferQuantity.String())
}

func TestLoad_StorageInvalido(t *testing.T) {
	t.Setenv("APP_STORAGE", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "bodega", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/bodega?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

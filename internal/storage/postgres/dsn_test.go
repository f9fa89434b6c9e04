package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dataportfolio/portfolio-api/config"
)

func TestDSN(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		cfg := &config.DatabaseConfig{DSN: "postgres://a@b/c", Host: "ignored"}
		assert.Equal(t, "postgres://a@b/c", DSN(cfg))
	})

	t.Run("built from fields", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "app", Password: "p@ss word", Name: "portfolio"}
		assert.Equal(t, "postgres://app:p%40ss%20word@db:5433/portfolio?sslmode=disable", DSN(cfg))
	})
}

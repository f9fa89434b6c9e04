package postgres

import (
	"fmt"
	"net/url"

	"github.com/dataportfolio/portfolio-api/config"
)

// DSN returns cfg.DSN when set, otherwise a postgres:// URL built from the
// discrete host fields. Both lib/pq and pgx accept the result.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	Host     string        `envconfig:"HOST" split_words:"true" default:"localhost"`
	Port     int           `envconfig:"PORT" split_words:"true" default:"5432"`
	Database string        `envconfig:"DATABASE" split_words:"true" required:"true"`
	User     string        `envconfig:"USER" split_words:"true" default:"postgres"`
	Password string        `envconfig:"PASSWORD" split_words:"true"`
	SSLMode  string        `envconfig:"SSL_MODE" split_words:"true" default:"disable"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`

	MaxOpenConns int `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"10"`
}

// DSN builds the postgres URL. The password is escaped so special characters
// survive.
func (c Config) DSN() string {
	host := strings.TrimSpace(c.Host)
	auth := url.UserPassword(strings.TrimSpace(c.User), c.Password)
	return fmt.Sprintf("postgres://%s@%s:%d/%s?sslmode=%s",
		auth.String(), host, c.Port, strings.TrimSpace(c.Database), strings.TrimSpace(c.SSLMode))
}

// Connect opens a bun database over pgdriver and verifies the connection.
func Connect(ctx context.Context, cfg Config) (*bun.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN()),
		pgdriver.WithTimeout(timeout),
	))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func MustConnect(ctx context.Context, cfg Config) *bun.DB {
	db, err := Connect(ctx, cfg)
	if err != nil {
		panic(err)
	}
	return db
}

package database

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// Option configures the Postgres wrapper.
type Option func(*Postgres)

// MaxPoolSize limits the number of pooled connections.
func MaxPoolSize(size int32) Option {
	return func(p *Postgres) {
		p.maxPoolSize = size
	}
}

// ConnTimeout sets the connect timeout in seconds.
func ConnTimeout(seconds int) Option {
	return func(p *Postgres) {
		p.connTimeout = time.Duration(seconds) * time.Second
	}
}

// HealthCheckPeriod sets the pool health check period in minutes.
func HealthCheckPeriod(minutes int) Option {
	return func(p *Postgres) {
		p.healthCheckPeriod = time.Duration(minutes) * time.Minute
	}
}

// Isolation sets the default transaction isolation level for the pool.
func Isolation(level pgx.TxIsoLevel) Option {
	return func(p *Postgres) {
		p.isolation = level
	}
}

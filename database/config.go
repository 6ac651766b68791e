package database

import (
	"fmt"
	"time"

	"github.com/satishbabariya/neodb/database/pool"
)

// DefaultMySQLPort is used when a MySQL endpoint names no port.
const DefaultMySQLPort = 3306

// Endpoint describes one database server. For SQLite only Path and Params
// are used.
type Endpoint struct {
	Host     string            `mapstructure:"host" yaml:"host,omitempty"`
	Port     int               `mapstructure:"port" yaml:"port,omitempty"`
	DBName   string            `mapstructure:"dbname" yaml:"dbname,omitempty"`
	User     string            `mapstructure:"user" yaml:"user,omitempty"`
	Password string            `mapstructure:"password" yaml:"password,omitempty"`
	Charset  string            `mapstructure:"charset" yaml:"charset,omitempty"`
	Path     string            `mapstructure:"path" yaml:"path,omitempty"`
	Params   map[string]string `mapstructure:"params" yaml:"params,omitempty"`
}

// merge returns e with every empty field taken from base.
func (e Endpoint) merge(base Endpoint) Endpoint {
	if e.Host == "" {
		e.Host = base.Host
	}
	if e.Port == 0 {
		e.Port = base.Port
	}
	if e.DBName == "" {
		e.DBName = base.DBName
	}
	if e.User == "" {
		e.User = base.User
	}
	if e.Password == "" {
		e.Password = base.Password
	}
	if e.Charset == "" {
		e.Charset = base.Charset
	}
	if e.Path == "" {
		e.Path = base.Path
	}
	if len(base.Params) > 0 {
		params := make(map[string]string, len(base.Params)+len(e.Params))
		for k, v := range base.Params {
			params[k] = v
		}
		for k, v := range e.Params {
			params[k] = v
		}
		e.Params = params
	}
	return e
}

// Address returns host:port, or the file path for SQLite.
func (e Endpoint) Address() string {
	if e.Path != "" {
		return e.Path
	}
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// PoolConfig is the connection pool section of Config.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" yaml:"max_open,omitempty"`
	MaxIdle     int           `mapstructure:"max_idle" yaml:"max_idle,omitempty"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime" yaml:"max_lifetime,omitempty"`
	MaxIdleTime time.Duration `mapstructure:"max_idle_time" yaml:"max_idle_time,omitempty"`
	HealthCheck time.Duration `mapstructure:"health_check" yaml:"health_check,omitempty"`
}

// Pool converts the section to a pool.Config, keeping the pool defaults for
// unset fields.
func (p PoolConfig) Pool() pool.Config {
	cfg := pool.DefaultConfig()
	if p.MaxOpen > 0 {
		cfg.MaxOpenConns = p.MaxOpen
	}
	if p.MaxIdle > 0 {
		cfg.MaxIdleConns = p.MaxIdle
	}
	if p.MaxLifetime > 0 {
		cfg.ConnMaxLifetime = p.MaxLifetime
	}
	if p.MaxIdleTime > 0 {
		cfg.ConnMaxIdleTime = p.MaxIdleTime
	}
	if p.HealthCheck > 0 {
		cfg.HealthCheckInterval = p.HealthCheck
	}
	return cfg
}

// Config is the database section of the application configuration.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	// Base holds settings shared by the primary and every replica.
	Base        Endpoint   `mapstructure:"base" yaml:"base,omitempty"`
	Primary     Endpoint   `mapstructure:"primary" yaml:"primary"`
	Replicas    []Endpoint `mapstructure:"replicas" yaml:"replicas,omitempty"`
	WithReplica bool       `mapstructure:"with_replica" yaml:"with_replica,omitempty"`
	// ForceHint is prefixed to reads that must hit the primary.
	ForceHint  string     `mapstructure:"force_hint" yaml:"force_hint,omitempty"`
	LogQueries bool       `mapstructure:"log_queries" yaml:"log_queries,omitempty"`
	Pool       PoolConfig `mapstructure:"pool" yaml:"pool,omitempty"`
}

// Topology is a resolved Config for one client. It does not change once
// resolved.
type Topology struct {
	Driver    string
	Prefix    string
	ForceHint string
	Primary   Endpoint
	Replicas  []Endpoint
	// ReplicaIndex is the replica serving this client, or -1 when reads go
	// to the primary.
	ReplicaIndex int
	Pool         PoolConfig
	LogQueries   bool
}

// Replica returns the chosen replica endpoint.
func (t *Topology) Replica() (Endpoint, bool) {
	if t.ReplicaIndex < 0 || t.ReplicaIndex >= len(t.Replicas) {
		return Endpoint{}, false
	}
	return t.Replicas[t.ReplicaIndex], true
}

// Resolve merges Base into the primary and each replica, fills defaults and
// picks the replica for clientID.
func Resolve(cfg Config, clientID string) (*Topology, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", cfg.Driver, err)
	}

	primary := withDefaults(driver, cfg.Primary.merge(cfg.Base))
	if driver == SQLite && primary.Path == "" || driver == MySQL && primary.Host == "" {
		return nil, fmt.Errorf("resolve: %w", ErrMissingPrimary)
	}

	hint := cfg.ForceHint
	if hint == "" {
		hint = DefaultForceHint
	}

	top := &Topology{
		Driver:       driver,
		Prefix:       cfg.Prefix,
		ForceHint:    hint,
		Primary:      primary,
		ReplicaIndex: -1,
		Pool:         cfg.Pool,
		LogQueries:   cfg.LogQueries,
	}

	for _, r := range cfg.Replicas {
		top.Replicas = append(top.Replicas, withDefaults(driver, r.merge(cfg.Base)))
	}

	if cfg.WithReplica && len(top.Replicas) > 0 {
		top.ReplicaIndex = SelectReplica(clientID, len(top.Replicas))
	}

	return top, nil
}

func withDefaults(driver string, e Endpoint) Endpoint {
	if driver != MySQL {
		return e
	}
	if e.Port == 0 {
		e.Port = DefaultMySQLPort
	}
	if e.Charset == "" {
		e.Charset = "utf8mb4"
	}
	return e
}

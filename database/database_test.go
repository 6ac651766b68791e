package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectReplica(t *testing.T) {
	// md5("") = d41d8cd9..., md5("127.0.0.1") = f528764d...
	assert.Equal(t, 100%3, SelectReplica("", 3))
	assert.Equal(t, 102%4, SelectReplica("127.0.0.1", 4))
	assert.Equal(t, 0, SelectReplica("127.0.0.1", 1))
	assert.Equal(t, 0, SelectReplica("127.0.0.1", 0))

	for i := 0; i < 10; i++ {
		assert.Equal(t, SelectReplica("10.0.0.7", 5), SelectReplica("10.0.0.7", 5))
	}
}

func TestForcePrimary(t *testing.T) {
	assert.Equal(t, "/*FORCE_MASTER*/ SELECT 1", ForcePrimary("SELECT 1", DefaultForceHint))
	assert.Equal(t, "/*other*/ SELECT 1", ForcePrimary("/*other*/ SELECT 1", DefaultForceHint))
	assert.Equal(t, "SELECT 1", ForcePrimary("SELECT 1", ""))
}

func TestResolve(t *testing.T) {
	cfg := Config{
		Driver: "pdo_mysql",
		Prefix: "neo_",
		Base: Endpoint{
			User:     "app",
			Password: "secret",
			DBName:   "neo",
			Params:   map[string]string{"parseTime": "true"},
		},
		Primary: Endpoint{Host: "db0"},
		Replicas: []Endpoint{
			{Host: "db1"},
			{Host: "db2", Port: 3307, User: "reader"},
			{Host: "db3"},
			{Host: "db4"},
		},
		WithReplica: true,
		Pool:        PoolConfig{MaxOpen: 50, HealthCheck: 2 * time.Minute},
	}

	top, err := Resolve(cfg, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, MySQL, top.Driver)
	assert.Equal(t, "neo_", top.Prefix)
	assert.Equal(t, DefaultForceHint, top.ForceHint)
	assert.Equal(t, "db0", top.Primary.Host)
	assert.Equal(t, DefaultMySQLPort, top.Primary.Port)
	assert.Equal(t, "app", top.Primary.User)
	assert.Equal(t, "utf8mb4", top.Primary.Charset)
	assert.Equal(t, "true", top.Primary.Params["parseTime"])

	require.Len(t, top.Replicas, 4)
	assert.Equal(t, "reader", top.Replicas[1].User)
	assert.Equal(t, 3307, top.Replicas[1].Port)
	assert.Equal(t, "neo", top.Replicas[1].DBName)

	assert.Equal(t, 2, top.ReplicaIndex)
	replica, ok := top.Replica()
	require.True(t, ok)
	assert.Equal(t, "db3", replica.Host)

	poolCfg := top.Pool.Pool()
	assert.Equal(t, 50, poolCfg.MaxOpenConns)
	assert.Equal(t, 5, poolCfg.MaxIdleConns)
	assert.Equal(t, 2*time.Minute, poolCfg.HealthCheckInterval)
}

func TestResolveWithoutReplica(t *testing.T) {
	cfg := Config{
		Driver:   "sqlite",
		Primary:  Endpoint{Path: "app.db"},
		Replicas: []Endpoint{{Path: "replica.db"}},
	}

	top, err := Resolve(cfg, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, -1, top.ReplicaIndex)
	_, ok := top.Replica()
	assert.False(t, ok)
	assert.Zero(t, top.Primary.Port)
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve(Config{Driver: "oci8"}, "")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Resolve(Config{Driver: "mysql"}, "")
	assert.ErrorIs(t, err, ErrMissingPrimary)

	_, err = Resolve(Config{Driver: "sqlite"}, "")
	assert.ErrorIs(t, err, ErrMissingPrimary)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	chk := require.New(t)
	cfg := Default()
	chk.Equal("traces", cfg.TracesDir)
	chk.Equal("stats", cfg.StatsDir)
	chk.Equal(8, cfg.Workers)
	chk.EqualValues(200_000_000, cfg.Warmup)
	chk.EqualValues(500_000_000, cfg.Simulation)
	chk.Equal(10*time.Hour, cfg.Timeout)
	chk.NoError(cfg.Validate())
}

func TestValidate(t *testing.T) {
	chk := require.New(t)

	cfg := Default()
	cfg.Workers = 0
	chk.Error(cfg.Validate())

	cfg = Default()
	cfg.Timeout = 0
	chk.Error(cfg.Validate())

	cfg = Default()
	cfg.Limit = -1
	chk.Error(cfg.Validate())

	cfg = Default()
	cfg.Limit = 10
	chk.NoError(cfg.Validate())
}

func TestNewViperEnvPrefix(t *testing.T) {
	chk := require.New(t)
	t.Setenv("SIMBATCH_WORKERS", "4")
	t.Setenv("SIMBATCH_SKIP_EXISTING", "true")

	v, err := NewViper("")
	chk.NoError(err)
	chk.Equal(4, v.GetInt("workers"))
	chk.True(v.GetBool("skip-existing"))
}

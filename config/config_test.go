package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND", "")
	t.Setenv("LOW_SUPPLY_THRESHOLD", "")
	cfg := Load()

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 5.0, cfg.LowSupplyThreshold)
	assert.Equal(t, "medicamentos", cfg.ESMedicamentosIndex)
	assert.Empty(t, cfg.ESAddrs())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND", " Postgres ")
	t.Setenv("LOW_SUPPLY_THRESHOLD", "2.5")
	t.Setenv("LOCATION_SYNC_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	cfg := Load()

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, 2.5, cfg.LowSupplyThreshold)
	assert.Equal(t, 3*time.Second, cfg.LocationSyncTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, int32(10), cfg.DBMaxConns)
}

func TestParseBackend(t *testing.T) {
	assert.Equal(t, BackendMemory, ParseBackend("sqlite"))
	assert.Equal(t, BackendPostgres, ParseBackend("POSTGRES"))
	assert.Equal(t, BackendRemote, ParseBackend(" remote "))
}

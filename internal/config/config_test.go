package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/wells/internal/config"
	"github.com/johnwards/wells/internal/lookup"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "wells.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 50, cfg.Generation.NumProperties)
	assert.Equal(t, 0.2, cfg.Generation.NoiseProbability)
	assert.Equal(t, 1000, cfg.Generation.FactBatchSize)
	assert.Equal(t, "2020-01", cfg.Generation.StartMonth)
	assert.Equal(t, lookup.BackendMemory, cfg.Lookup.Backend)
	assert.True(t, cfg.Lookup.Cache)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WELLS_DB", "/tmp/test.db")
	t.Setenv("WELLS_NUM_PROPERTIES", "7")
	t.Setenv("WELLS_SEED", "42")
	t.Setenv("WELLS_PRODUCT_TYPES", "oil,gas")
	t.Setenv("WELLS_LOOKUP_BACKEND", "redis")

	cfg, err := config.Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 7, cfg.Generation.NumProperties)
	assert.Equal(t, uint64(42), cfg.Generation.Seed)
	assert.Equal(t, []string{"oil", "gas"}, cfg.Generation.ProductTypes)
	assert.Equal(t, lookup.BackendRedis, cfg.Lookup.Backend)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "wells.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: from-yaml.db
log:
  format: json
generation:
  num_properties: 5
  num_months: 2
lookup:
  codes:
    state:
      TX: Texas
`), 0o600))
	t.Setenv("WELLS_NUM_MONTHS", "3")

	cfg, err := config.Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "from-yaml.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Generation.NumProperties)
	assert.Equal(t, 3, cfg.Generation.NumMonths)
	assert.Equal(t, 30, cfg.Generation.NumProducts)
	assert.Equal(t, "Texas", cfg.Lookup.Codes["state"]["TX"])
}

func TestLoadYAMLKeepsExplicitZeros(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "wells.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  num_products: 0
  num_benchmarks: 0
  noise_probability: 0
  product_benchmark_probability: 0
lookup:
  cache: false
`), 0o600))

	cfg, err := config.Load(path, "")
	require.NoError(t, err)

	assert.Zero(t, cfg.Generation.NumProducts)
	assert.Zero(t, cfg.Generation.NumBenchmarks)
	assert.Zero(t, cfg.Generation.NoiseProbability)
	assert.Zero(t, cfg.Generation.ProductBenchmarkProbability)
	assert.False(t, cfg.Lookup.Cache)
	assert.Equal(t, 50, cfg.Generation.NumProperties)
	assert.Equal(t, lookup.BackendMemory, cfg.Lookup.Backend)
}

func TestLoadEnvZeroOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "wells.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generation:\n  noise_probability: 0.5\n"), 0o600))
	t.Setenv("WELLS_NOISE_PROBABILITY", "0")
	t.Setenv("WELLS_LOOKUP_CACHE", "false")

	cfg, err := config.Load(path, "")
	require.NoError(t, err)

	assert.Zero(t, cfg.Generation.NoiseProbability)
	assert.False(t, cfg.Lookup.Cache)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("WELLS_DB=from-env-file.db\n"), 0o600))
	t.Setenv("WELLS_DB", "")
	require.NoError(t, os.Unsetenv("WELLS_DB"))

	cfg, err := config.Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env-file.db", cfg.DBPath)

	_, err = config.Load("", filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string][2]string{
		"noise":   {"WELLS_NOISE_PROBABILITY", "1.5"},
		"batch":   {"WELLS_FACT_BATCH_SIZE", "0"},
		"backend": {"WELLS_LOOKUP_BACKEND", "cassandra"},
		"level":   {"WELLS_LOG_LEVEL", "loud"},
		"format":  {"WELLS_LOG_FORMAT", "xml"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(kv[0], kv[1])
			_, err := config.Load("", "")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}

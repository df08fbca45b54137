package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
recommender:
  side: item
  metric: Pearson
  k: 7
  aggregation: deviation_from_mean
ratings:
  separator: "::"
  header: true
resources:
  memory_limit_bytes: 1048576
logging:
  format: json
snapshot:
  backend: s3
  compression: zstd
  s3:
    bucket: snaps
    endpoint: http://localhost:9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "item", cfg.Recommender.Side)
	assert.Equal(t, "Pearson", cfg.Recommender.Metric)
	assert.Equal(t, 7, cfg.Recommender.K)
	assert.Equal(t, "deviation_from_mean", cfg.Recommender.Aggregation)
	assert.Equal(t, "::", cfg.Ratings.Separator)
	assert.True(t, cfg.Ratings.Header)
	assert.Equal(t, "#", cfg.Ratings.CommentPrefix)
	assert.Equal(t, int64(1<<20), cfg.Resources.MemoryLimitBytes)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "s3", cfg.Snapshot.Backend)
	assert.Equal(t, "zstd", cfg.Snapshot.Compression)
	assert.Equal(t, "snaps", cfg.Snapshot.S3.Bucket)
	assert.Equal(t, "cf4j.snap", cfg.Snapshot.Name)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
recommender:
  k: 7
  metric: cosine
`)
	t.Setenv("CF4J_RECOMMENDER_K", "12")
	t.Setenv("CF4J_RECOMMENDER_RELEVANCE_THRESHOLD", "3.5")
	t.Setenv("CF4J_SNAPSHOT_MINIO_SECURE", "false")
	t.Setenv("CF4J_UNRELATED_SETTING", "ignored")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Recommender.K)
	assert.Equal(t, "cosine", cfg.Recommender.Metric)
	assert.InDelta(t, 3.5, cfg.Recommender.RelevanceThreshold, 1e-12)
	assert.False(t, cfg.Snapshot.MinIO.Secure)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, "recommender:\n  k: 0\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "recommender.k")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"side", func(c *Config) { c.Recommender.Side = "both" }, "recommender.side must be one of"},
		{"metric", func(c *Config) { c.Recommender.Metric = "euclid" }, `unknown metric "euclid"`},
		{"empty metric", func(c *Config) { c.Recommender.Metric = "" }, "recommender.metric is required"},
		{"aggregation", func(c *Config) { c.Recommender.Aggregation = "median" }, `unknown aggregation "median"`},
		{"workers", func(c *Config) { c.Recommender.Workers = -1 }, "recommender.workers must be at least 0"},
		{"threshold", func(c *Config) { c.Recommender.RelevanceThreshold = -1 }, "recommender.relevance_threshold"},
		{"separator", func(c *Config) { c.Ratings.Separator = "" }, "ratings.separator is required"},
		{"memory", func(c *Config) { c.Resources.MemoryLimitBytes = -5 }, "resources.memory_limit_bytes"},
		{"level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"backend", func(c *Config) { c.Snapshot.Backend = "gcs" }, "snapshot.backend"},
		{"compression", func(c *Config) { c.Snapshot.Compression = "snappy" }, "snapshot.compression"},
		{"codec", func(c *Config) { c.Snapshot.Codec = "msgpack" }, "snapshot.codec"},
		{"local dir", func(c *Config) { c.Snapshot.Dir = "" }, "snapshot.dir is required for backend local"},
		{"s3 bucket", func(c *Config) { c.Snapshot.Backend = "s3" }, "snapshot.s3.bucket is required for backend s3"},
		{"s3 endpoint", func(c *Config) {
			c.Snapshot.Backend = "s3"
			c.Snapshot.S3.Bucket = "b"
			c.Snapshot.S3.Endpoint = "not a url"
		}, "snapshot.s3.endpoint"},
		{"minio", func(c *Config) { c.Snapshot.Backend = "minio" }, "snapshot.minio.endpoint is required for backend minio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Recommender.K = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recommender.k")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestMemoryBackendNeedsNothing(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Backend = "memory"
	cfg.Snapshot.Dir = ""
	assert.NoError(t, cfg.Validate())
}

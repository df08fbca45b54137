package config

import (
	"errors"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete cf4j configuration.
type Config struct {
	Recommender RecommenderConfig `koanf:"recommender"`
	Ratings     RatingsConfig     `koanf:"ratings"`
	Resources   ResourceConfig    `koanf:"resources"`
	Logging     LoggingConfig     `koanf:"logging"`
	Snapshot    SnapshotConfig    `koanf:"snapshot"`
}

// RecommenderConfig selects the KNN recommender.
type RecommenderConfig struct {
	// Side is "user" for UserKNN or "item" for ItemKNN.
	Side        string `koanf:"side" validate:"oneof=user item"`
	Metric      string `koanf:"metric" validate:"required,metric"`
	K           int    `koanf:"k" validate:"min=1"`
	Aggregation string `koanf:"aggregation" validate:"aggregation"`

	// Workers is the number of goroutines per pass. 0 means GOMAXPROCS.
	Workers int `koanf:"workers" validate:"min=0"`

	// RelevanceThreshold is the Singularities relevance threshold.
	// 0 derives it from the rating scale.
	RelevanceThreshold float64 `koanf:"relevance_threshold" validate:"min=0"`
}

// RatingsConfig describes the delimited ratings file.
type RatingsConfig struct {
	Separator     string `koanf:"separator" validate:"required"`
	Header        bool   `koanf:"header"`
	CommentPrefix string `koanf:"comment_prefix"`
}

// ResourceConfig bounds memory, concurrency and snapshot IO. Zero values
// disable the corresponding limit.
type ResourceConfig struct {
	MemoryLimitBytes    int64 `koanf:"memory_limit_bytes" validate:"min=0"`
	MaxConcurrentPasses int64 `koanf:"max_concurrent_passes" validate:"min=0"`
	IOLimitBytesPerSec  int64 `koanf:"io_limit_bytes_per_sec" validate:"min=0"`
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// SnapshotConfig selects where and how snapshots are stored.
type SnapshotConfig struct {
	Backend     string `koanf:"backend" validate:"oneof=local memory s3 minio"`
	Dir         string `koanf:"dir"`
	Name        string `koanf:"name" validate:"required"`
	Compression string `koanf:"compression" validate:"oneof=none lz4 zstd"`
	Codec       string `koanf:"codec" validate:"oneof=json go-json"`

	// CacheBytes enables a block cache in front of the backend.
	CacheBytes int64 `koanf:"cache_bytes" validate:"min=0"`
	BlockSize  int64 `koanf:"block_size" validate:"min=0"`

	S3    S3Config    `koanf:"s3"`
	MinIO MinIOConfig `koanf:"minio"`
}

// S3Config configures the s3 backend. Credentials come from the default
// AWS chain.
type S3Config struct {
	Bucket   string `koanf:"bucket"`
	Prefix   string `koanf:"prefix"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint" validate:"omitempty,url"`
}

// MinIOConfig configures the minio backend.
type MinIOConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Secure    bool   `koanf:"secure"`
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Recommender: RecommenderConfig{
			Side:        "user",
			Metric:      "jmsd",
			K:           50,
			Aggregation: "weighted-mean",
		},
		Ratings: RatingsConfig{
			Separator:     ",",
			CommentPrefix: "#",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Snapshot: SnapshotConfig{
			Backend:     "local",
			Dir:         "snapshots",
			Name:        "cf4j.snap",
			Compression: "lz4",
			Codec:       "go-json",
			BlockSize:   64 << 10,
			MinIO: MinIOConfig{
				Secure: true,
			},
		},
	}
}

// Package config loads server and snapshot settings from the environment
// and renderer themes from TOML files.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // TENDERGRAPH_DATABASE_URL (required)
	HTTPAddr    string // TENDERGRAPH_HTTP_ADDR (default ":8080")
	NATSURL     string // TENDERGRAPH_NATS_URL (optional, empty = no events)
	AuthToken   string // TENDERGRAPH_AUTH_TOKEN (optional, empty = auth disabled)

	// Snapshot settings
	SnapshotInterval   time.Duration // TENDERGRAPH_SNAPSHOT_INTERVAL (default 3m; 0 = disabled)
	SnapshotS3Bucket   string        // TENDERGRAPH_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // TENDERGRAPH_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // TENDERGRAPH_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Prefix   string        // TENDERGRAPH_SNAPSHOT_S3_PREFIX (default "tendergraph")
	SnapshotDir        string        // TENDERGRAPH_SNAPSHOT_DIR (enables local files when set)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("TENDERGRAPH_DATABASE_URL"),
		HTTPAddr:           envOrDefault("TENDERGRAPH_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("TENDERGRAPH_NATS_URL"),
		AuthToken:          os.Getenv("TENDERGRAPH_AUTH_TOKEN"),
		SnapshotS3Bucket:   os.Getenv("TENDERGRAPH_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("TENDERGRAPH_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("TENDERGRAPH_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Prefix:   envOrDefault("TENDERGRAPH_SNAPSHOT_S3_PREFIX", "tendergraph"),
		SnapshotDir:        os.Getenv("TENDERGRAPH_SNAPSHOT_DIR"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TENDERGRAPH_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("TENDERGRAPH_SNAPSHOT_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("TENDERGRAPH_SNAPSHOT_INTERVAL: %w", err)
		}
		c.SnapshotInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
)

// S3Config is optional. Mirroring is disabled when BUCKET_NAME is unset.
type S3Config struct {
	Enabled    bool
	BucketName string
	Region     string
	KeyPrefix  string
}

func GetS3Config() (*S3Config, error) {
	bucketName := os.Getenv("BUCKET_NAME")
	if bucketName == "" {
		return &S3Config{}, nil
	}

	region := os.Getenv("REGION")
	if region == "" {
		return nil, fmt.Errorf("REGION must be set when BUCKET_NAME is set")
	}

	return &S3Config{
		Enabled:    true,
		BucketName: bucketName,
		Region:     region,
		KeyPrefix:  getEnvOrDefault("S3_KEY_PREFIX", "content"),
	}, nil
}

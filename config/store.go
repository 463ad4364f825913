package config

import (
	"fmt"
	"time"
)

type StoreConfig struct {
	OutputDir     string
	StaleTempAge  time.Duration
	SweepInterval time.Duration
}

func GetStoreConfig() (*StoreConfig, error) {
	staleMinutes, err := getIntEnv("STALE_TEMP_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	if staleMinutes <= 0 {
		return nil, fmt.Errorf("STALE_TEMP_MINUTES must be positive")
	}

	return &StoreConfig{
		OutputDir:     getEnvOrDefault("OUTPUT_DIR", "./output"),
		StaleTempAge:  time.Duration(staleMinutes) * time.Minute,
		SweepInterval: time.Duration(staleMinutes) * time.Minute / 2,
	}, nil
}

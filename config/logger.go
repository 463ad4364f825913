package config

type LoggerConfig struct {
	Level   string
	Console bool
	// File enables a rotated JSON log file next to stderr output.
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

func GetLoggerConfig() (*LoggerConfig, error) {
	maxSize, err := getIntEnv("LOG_FILE_MAX_SIZE_MB", 100)
	if err != nil {
		return nil, err
	}
	maxBackups, err := getIntEnv("LOG_FILE_MAX_BACKUPS", 5)
	if err != nil {
		return nil, err
	}
	maxAge, err := getIntEnv("LOG_FILE_MAX_AGE_DAYS", 14)
	if err != nil {
		return nil, err
	}

	return &LoggerConfig{
		Level:          getEnvOrDefault("LOG_LEVEL", "info"),
		Console:        getEnvOrDefault("LOG_FORMAT", "json") == "console",
		File:           getEnvOrDefault("LOG_FILE", ""),
		FileMaxSizeMB:  maxSize,
		FileMaxBackups: maxBackups,
		FileMaxAgeDays: maxAge,
	}, nil
}

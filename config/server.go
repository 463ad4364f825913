package config

type ServerConfig struct {
	Port             string
	JwksUrl          string
	ArtifactBasePath string

	// GenerateRateLimit is a limiter rate such as "30-M"; "off" disables it.
	GenerateRateLimit string

	MockBackends bool
	// MockNarrationsFile optionally feeds canned narrations to the mock enhancer.
	MockNarrationsFile string
}

func GetServerConfig() (*ServerConfig, error) {
	mockBackends, err := getBoolEnv("MOCK_BACKENDS", false)
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		Port:               getEnvOrDefault("PORT", "8080"),
		JwksUrl:            getEnvOrDefault("JWKS_URL", ""),
		ArtifactBasePath:   getEnvOrDefault("ARTIFACT_BASE_PATH", "/api/videos"),
		MockBackends:       mockBackends,
		GenerateRateLimit:  getEnvOrDefault("GENERATE_RATE_LIMIT", "30-M"),
		MockNarrationsFile: getEnvOrDefault("MOCK_NARRATIONS_FILE", ""),
	}, nil
}

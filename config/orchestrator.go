package config

import "fmt"

type OrchestratorConfig struct {
	MaxConcurrentJobs    int
	SynthesisConcurrency int
	RenderConcurrency    int
	NonBlockingSubmit    bool
}

func GetOrchestratorConfig() (*OrchestratorConfig, error) {
	maxJobs, err := getIntEnv("MAX_CONCURRENT_JOBS", 120)
	if err != nil {
		return nil, err
	}
	synthesis, err := getIntEnv("SYNTHESIS_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	render, err := getIntEnv("RENDER_CONCURRENCY", 2)
	if err != nil {
		return nil, err
	}
	nonBlocking, err := getBoolEnv("JOB_QUEUE_NONBLOCKING", false)
	if err != nil {
		return nil, err
	}
	if maxJobs <= 0 || synthesis <= 0 || render <= 0 {
		return nil, fmt.Errorf("concurrency limits must be positive")
	}

	return &OrchestratorConfig{
		MaxConcurrentJobs:    maxJobs,
		SynthesisConcurrency: synthesis,
		RenderConcurrency:    render,
		NonBlockingSubmit:    nonBlocking,
	}, nil
}

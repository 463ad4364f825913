package config

import (
	"fmt"
	"os"
)

// DynamoConfig is optional. The job event ledger is disabled when
// DYNAMO_TABLE_NAME is unset.
type DynamoConfig struct {
	Enabled    bool
	TableName  string
	Region     string
	TtlMinutes int
}

func GetDynamoConfig() (*DynamoConfig, error) {
	tableName := os.Getenv("DYNAMO_TABLE_NAME")
	if tableName == "" {
		return &DynamoConfig{}, nil
	}

	region := os.Getenv("REGION")
	if region == "" {
		return nil, fmt.Errorf("REGION must be set when DYNAMO_TABLE_NAME is set")
	}

	ttlMinutes, err := getIntEnv("DYNAMO_TTL_MINUTES", 24*60)
	if err != nil {
		return nil, err
	}

	return &DynamoConfig{
		Enabled:    true,
		TableName:  tableName,
		Region:     region,
		TtlMinutes: ttlMinutes,
	}, nil
}

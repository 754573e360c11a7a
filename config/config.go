package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/malaebhub/malaeb-server/store"
)

// Config holds all configuration parameters of the application.
type Config struct {
	ServerPort   int
	JWTSecretKey string

	// DynamoDB
	AWSRegion          string
	DynamoEndpoint     string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	Tables             store.Tables

	// Cloudflare R2 media storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally
// picking up a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-central-1"
	}

	cfg := &Config{
		ServerPort:   port,
		JWTSecretKey: jwtKey,

		AWSRegion:          region,
		DynamoEndpoint:     os.Getenv("DYNAMO_ENDPOINT"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Tables: store.Tables{
			Users:         envOr("TABLE_USERS", "users"),
			Teams:         envOr("TABLE_TEAMS", "teams"),
			TeamMembers:   envOr("TABLE_TEAM_MEMBERS", "team_members"),
			Matches:       envOr("TABLE_MATCHES", "matches"),
			Tournaments:   envOr("TABLE_TOURNAMENTS", "tournaments"),
			Notifications: envOr("TABLE_NOTIFICATIONS", "notifications"),
		},

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

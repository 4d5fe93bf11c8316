package config

import (
	"os"
	"strings"

	platformconfig "github.com/example/game-review-platform/internal/platform/config"
	"github.com/example/game-review-platform/services/reviews/internal/media"
)

type Config struct {
	App platformconfig.AppConfig

	AppEnv      string
	DatabaseURL string
	NATSURL     string
	JWTSecret   string
	JWTIssuer   string

	Media media.Config

	GeminiAPIKey string
	GeminiModel  string
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// Load reads the reviews service config from the environment.
func Load() Config {
	return Config{
		App:         platformconfig.Load("reviews"),
		AppEnv:      getenv("APP_ENV", "development"),
		DatabaseURL: getenv("DATABASE_URL", ""),
		NATSURL:     getenv("NATS_URL", ""),
		JWTSecret:   getenv("JWT_SECRET", ""),
		JWTIssuer:   getenv("JWT_ISSUER", ""),
		Media: media.Config{
			Endpoint:        getenv("S3_ENDPOINT", ""),
			Region:          getenv("S3_REGION", "us-east-1"),
			Bucket:          getenv("S3_BUCKET", ""),
			AccessKeyID:     getenv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   getenv("MEDIA_PUBLIC_BASE_URL", ""),
		},
		GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
		GeminiModel:  getenv("GEMINI_MODEL", ""),
	}
}

// Production reports whether the service runs against real infrastructure.
func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

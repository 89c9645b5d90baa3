package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	Env        string
	AuthSecret string

	// RecordDSN selects the Postgres backend; RecordPath is the file
	// fallback when no DSN is set.
	RecordDSN  string
	RecordPath string

	GeminiModel string
	GroqModel   string

	// ShutdownGrace bounds how long in-flight requests get to finish
	// after SIGINT/SIGTERM.
	ShutdownGrace time.Duration

	Archive ArchiveConfig
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:          *port,
		Env:           env,
		AuthSecret:    firstNonEmpty(strings.TrimSpace(os.Getenv("AUTH_SECRET")), localAuthSecret(env)),
		RecordDSN:     strings.TrimSpace(os.Getenv("RECORD_STORE_PG_DSN")),
		RecordPath:    firstNonEmpty(strings.TrimSpace(os.Getenv("RECORD_STORE_PATH")), "records.json"),
		GeminiModel:   strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		GroqModel:     strings.TrimSpace(os.Getenv("GROQ_MODEL")),
		ShutdownGrace: resolveShutdownGrace(),
		Archive:       loadArchiveConfig(env),
	}
	return cfg, nil
}

func resolveShutdownGrace() time.Duration {
	raw := strings.TrimSpace(os.Getenv("SHUTDOWN_GRACE"))
	if raw == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

func loadArchiveConfig(env string) ArchiveConfig {
	endpoint := resolveArchiveEndpoint(env)
	return ArchiveConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "casewizard-submissions"),
		UseSSL:    resolveArchiveUseSSL(env),
	}
}

func resolveArchiveEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
}

func resolveArchiveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARCHIVE_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

// localAuthSecret keeps local runs working without a .env; production
// must set AUTH_SECRET.
func localAuthSecret(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return "casewizard-local-dev"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

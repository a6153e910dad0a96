package config

import (
	"os"
	"strconv"
)

// TokenEnvKey is the environment variable that supplies the shared ingestion credential.
const TokenEnvKey = "SCANWOW_TOKEN"

// DefaultMaxBodyBytes bounds request bodies admitted by the HTTP server (50 MiB).
const DefaultMaxBodyBytes = 50 * 1024 * 1024

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverLocal = "local"
	StorageDriverMinIO = "minio"
)

// Credential is the server-held secret that clients present as a bearer token.
// The zero value is the "unconfigured" state; it is distinct from a configured empty string,
// which NewCredential refuses to produce.
type Credential struct {
	value string
	set   bool
}

// NewCredential returns a configured Credential, or an unconfigured one if v is empty.
func NewCredential(v string) Credential {
	if v == "" {
		return Credential{}
	}
	return Credential{value: v, set: true}
}

// LookupCredential reads a Credential from the named environment variable.
func LookupCredential(key string) Credential {
	v, _ := os.LookupEnv(key)
	return NewCredential(v)
}

// IsSet reports whether a credential was configured.
func (c Credential) IsSet() bool { return c.set }

// Value returns the secret. It is empty when the credential is unconfigured.
func (c Credential) Value() string { return c.value }

// String never reveals the secret so a Credential can be logged or printed safely.
func (c Credential) String() string {
	if !c.set {
		return "<unset>"
	}
	return "<redacted>"
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects where scan artifacts are persisted.
type StorageConfig struct {
	Driver    string
	UploadDir string
	MinIO     MinIOConfig
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	Token        Credential
	AssetsDir    string
	MaxBodyBytes int
	LogLevel     string
	Location     string
	Storage      StorageConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:      getEnv("APP_HOST", "localhost:8080"),
		Port:         getEnv("PORT", "8080"),
		Token:        LookupCredential(TokenEnvKey),
		AssetsDir:    getEnv("ASSETS_DIR", "public"),
		MaxBodyBytes: getEnvInt("MAX_BODY_BYTES", DefaultMaxBodyBytes),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Location:     getEnv("TZ_LOCATION", "UTC"),
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", StorageDriverLocal),
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "dev_secret"
)

// ErrInsecureSecret is returned when production runs with the development signing secret.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	JWT       JWTConfig
	Session   SessionConfig
	CORS      CORSConfig
	Log       LogConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Posts     PostsConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
	Seed      SeedConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles the Redis-backed cache for public post listings.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// SessionConfig describes the admin session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
	Domain     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

const (
	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

// StorageConfig selects the object store that receives uploads.
type StorageConfig struct {
	Driver             string
	LocalDir           string
	PublicBaseURL      string
	GCSImagesBucket    string
	GCSDocumentsBucket string
}

// UploadConfig bounds a single upload batch.
type UploadConfig struct {
	MaxFiles        int
	MaxImageSize    int64
	MaxDocumentSize int64
	ThumbnailSize   int
}

type PostsConfig struct {
	MaxPinned int
}

type RateLimitConfig struct {
	LoginPerMinute int
}

// ExportConfig tunes admin exports. PDFFontPath points at a TTF with Hangul
// glyphs; without it PDF exports fall back to the core Latin font.
type ExportConfig struct {
	PDFFontPath string
}

// SeedConfig holds the credentials used by the seed command.
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if cfg.Env == EnvProduction && cfg.JWT.Secret == defaultJWTSecret {
		return nil, ErrInsecureSecret
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Session = SessionConfig{
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
		Domain:     v.GetString("SESSION_COOKIE_DOMAIN"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		Compress:   v.GetBool("LOG_COMPRESS"),
	}

	cfg.Storage = StorageConfig{
		Driver:             strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalDir:           v.GetString("STORAGE_LOCAL_DIR"),
		PublicBaseURL:      strings.TrimRight(v.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
		GCSImagesBucket:    v.GetString("STORAGE_GCS_IMAGES_BUCKET"),
		GCSDocumentsBucket: v.GetString("STORAGE_GCS_DOCUMENTS_BUCKET"),
	}

	cfg.Upload = UploadConfig{
		MaxFiles:        positiveInt(v.GetInt("UPLOAD_MAX_FILES"), 10),
		MaxImageSize:    positiveInt64(v.GetInt64("UPLOAD_MAX_IMAGE_SIZE"), 10*1024*1024),
		MaxDocumentSize: positiveInt64(v.GetInt64("UPLOAD_MAX_DOCUMENT_SIZE"), 20*1024*1024),
		ThumbnailSize:   positiveInt(v.GetInt("UPLOAD_THUMBNAIL_SIZE"), 300),
	}

	cfg.Posts = PostsConfig{MaxPinned: positiveInt(v.GetInt("POSTS_MAX_PINNED"), 3)}

	cfg.RateLimit = RateLimitConfig{LoginPerMinute: positiveInt(v.GetInt("LOGIN_RATE_PER_MINUTE"), 10)}

	cfg.Export = ExportConfig{PDFFontPath: v.GetString("EXPORT_PDF_FONT")}

	cfg.Seed = SeedConfig{
		AdminUsername: v.GetString("SEED_ADMIN_USERNAME"),
		AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sharinglove")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "1m")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "sharinglove-api")

	v.SetDefault("SESSION_COOKIE_NAME", "admin-token")
	v.SetDefault("SESSION_COOKIE_SECURE", true)
	v.SetDefault("SESSION_COOKIE_DOMAIN", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 7)
	v.SetDefault("LOG_COMPRESS", false)

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("STORAGE_GCS_IMAGES_BUCKET", "images")
	v.SetDefault("STORAGE_GCS_DOCUMENTS_BUCKET", "documents")

	v.SetDefault("UPLOAD_MAX_FILES", 10)
	v.SetDefault("UPLOAD_MAX_IMAGE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOAD_MAX_DOCUMENT_SIZE", 20*1024*1024)
	v.SetDefault("UPLOAD_THUMBNAIL_SIZE", 300)

	v.SetDefault("POSTS_MAX_PINNED", 3)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)

	v.SetDefault("EXPORT_PDF_FONT", "")

	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin1234")
}

// isMissingFile reports whether viper failed only because .env does not exist.
// SetConfigFile bypasses viper's search, so a missing file surfaces as a fs error.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func positiveInt64(v, fallback int64) int64 {
	if v <= 0 {
		return fallback
	}
	return v
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

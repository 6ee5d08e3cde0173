package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds file and environment driven configuration values.
// Secrets have no defaults and must come from the environment or an env file.
type AppConfig struct {
	AppPort            string
	PublicBaseURL      string
	RateLimitPerMinute int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver       string
	DatabaseURI    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	DBMaxIdleConns int
	// Redis for caching and abuse counters; an empty host disables it
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Sessions
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	SessionSweepEvery   time.Duration
	// Registration and login security
	RegisterCaptchaEnabled     bool
	RegisterAttemptCooldownSec int
	AllowDeletedIdentityReuse  bool
	LoginFailedMaxPerIPPerHour int
	LoginTempBanMinutes        int
	// Uploads
	UploadDriver    string
	UploadDir       string
	UploadMaxSizeMB int
	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string
	// Cache
	CacheTTL time.Duration
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}
	// Precedence: .env -> config/config.json -> defaults -> environment variable overrides
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}
	cfg = LoadFrom(filepath.Join("config", "config.json"))
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// LoadFrom reads the JSON file at path (missing files are ignored) and applies
// defaults and environment overrides without touching the cached configuration.
func LoadFrom(path string) AppConfig {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		log.Printf("config file %s ignored: %v", path, err)
	}

	return AppConfig{
		AppPort:            v.GetString("app.port"),
		PublicBaseURL:      strings.TrimRight(v.GetString("app.public_base_url"), "/"),
		RateLimitPerMinute: v.GetInt("app.rate_limit_per_minute"),

		GinMode: v.GetString("gin.mode"),
		GinPath: v.GetString("gin.log_path"),

		DBDriver:       strings.ToLower(v.GetString("db.driver")),
		DatabaseURI:    v.GetString("db.uri"),
		DBHost:         v.GetString("db.host"),
		DBPort:         v.GetString("db.port"),
		DBUser:         v.GetString("db.user"),
		DBPassword:     v.GetString("db.password"),
		DBName:         v.GetString("db.name"),
		DBMaxOpenConns: v.GetInt("db.max_open_conns"),
		DBMaxIdleConns: v.GetInt("db.max_idle_conns"),

		RedisHost:     v.GetString("redis.host"),
		RedisPort:     v.GetInt("redis.port"),
		RedisDB:       v.GetInt("redis.db"),
		RedisPassword: v.GetString("redis.password"),

		LogLevel:      v.GetString("log.level"),
		LogPath:       v.GetString("log.path"),
		LogMaxSizeMB:  v.GetInt("log.max_size_mb"),
		LogMaxBackups: v.GetInt("log.max_backups"),
		LogMaxAgeDays: v.GetInt("log.max_age_days"),
		LogCompress:   v.GetBool("log.compress"),

		SessionTTL:          time.Duration(v.GetInt("session.ttl_hours")) * time.Hour,
		SessionCookieName:   v.GetString("session.cookie_name"),
		SessionCookieSecure: v.GetBool("session.cookie_secure"),
		SessionSweepEvery:   time.Duration(v.GetInt("session.sweep_minutes")) * time.Minute,

		RegisterCaptchaEnabled:     v.GetBool("register.captcha_enabled"),
		RegisterAttemptCooldownSec: v.GetInt("register.attempt_cooldown_sec"),
		AllowDeletedIdentityReuse:  v.GetBool("register.allow_deleted_identity_reuse"),
		LoginFailedMaxPerIPPerHour: v.GetInt("login.failed_max_per_ip_per_hour"),
		LoginTempBanMinutes:        v.GetInt("login.temp_ban_minutes"),

		UploadDriver:    strings.ToLower(v.GetString("upload.driver")),
		UploadDir:       v.GetString("upload.dir"),
		UploadMaxSizeMB: v.GetInt("upload.max_size_mb"),
		S3Bucket:        v.GetString("upload.s3_bucket"),
		S3Region:        v.GetString("upload.s3_region"),
		S3PublicBaseURL: strings.TrimRight(v.GetString("upload.s3_public_base_url"), "/"),

		CacheTTL: time.Duration(v.GetInt("cache.ttl_seconds")) * time.Second,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.public_base_url", "http://localhost:8080")
	v.SetDefault("app.rate_limit_per_minute", 120)

	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/gin.log")

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.name", "board")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.port", 6379)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.cookie_name", "session_id")
	v.SetDefault("session.sweep_minutes", 30)

	v.SetDefault("register.attempt_cooldown_sec", 0)
	v.SetDefault("login.failed_max_per_ip_per_hour", 20)
	v.SetDefault("login.temp_ban_minutes", 30)

	v.SetDefault("upload.driver", "local")
	v.SetDefault("upload.dir", filepath.Join("static", "uploads"))
	v.SetDefault("upload.max_size_mb", 5)

	v.SetDefault("cache.ttl_seconds", 300)
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Storage      StorageConfig
	Attendance   AttendanceConfig
	Approval     ApprovalConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	Version        string
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig selects the repository implementation.
type StorageConfig struct {
	Driver        string // postgres or memory
	BasePath      string // directory for uploaded certificates
	MaxUploadSize int64
}

// AttendanceConfig holds the reconciler rules and scheduling.
type AttendanceConfig struct {
	OfficeStart   clock.TimeOfDay
	LAGrace       clock.TimeOfDay
	FullDayOut    clock.TimeOfDay
	FNCutoff      clock.TimeOfDay
	ANCutoff      clock.TimeOfDay
	ReconcileHour int
	Timezone      *time.Location
	Workers       int
	MaxAttempts   int
	RetryBackoff  time.Duration
}

type ApprovalConfig struct {
	LockDays int
}

type NotificationConfig struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hrms"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	maxUploadSize, err := getEnvInt("STORAGE_MAX_UPLOAD_SIZE", 5<<20)
	if err != nil {
		return nil, err
	}

	config.Storage = StorageConfig{
		Driver:        getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		BasePath:      getEnv("STORAGE_BASE_PATH", "./uploads"),
		MaxUploadSize: int64(maxUploadSize),
	}

	// Attendance configuration
	if config.Attendance, err = loadAttendance(); err != nil {
		return nil, err
	}

	// Approval configuration
	lockDays, err := getEnvInt("APPROVAL_LOCK_DAYS", 30)
	if err != nil {
		return nil, err
	}
	config.Approval = ApprovalConfig{LockDays: lockDays}

	// Notification configuration
	if config.Notification, err = loadNotification(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	var (
		cfg AttendanceConfig
		err error
	)

	times := []struct {
		key      string
		fallback string
		dst      *clock.TimeOfDay
	}{
		{"ATTENDANCE_OFFICE_START", "09:00:00", &cfg.OfficeStart},
		{"ATTENDANCE_LA_GRACE", "09:15:00", &cfg.LAGrace},
		{"ATTENDANCE_FULL_DAY_OUT", "17:30:00", &cfg.FullDayOut},
		{"ATTENDANCE_FN_CUTOFF", "13:00:00", &cfg.FNCutoff},
		{"ATTENDANCE_AN_CUTOFF", "13:30:00", &cfg.ANCutoff},
	}
	for _, t := range times {
		if *t.dst, err = clock.ParseTimeOfDay(getEnv(t.key, t.fallback)); err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", t.key, err)
		}
	}

	if cfg.ReconcileHour, err = getEnvInt("ATTENDANCE_RECONCILE_HOUR", 23); err != nil {
		return cfg, err
	}
	if cfg.ReconcileHour < 0 || cfg.ReconcileHour > 23 {
		return cfg, fmt.Errorf("invalid ATTENDANCE_RECONCILE_HOUR: %d", cfg.ReconcileHour)
	}
	if cfg.Timezone, err = time.LoadLocation(getEnv("ATTENDANCE_TIMEZONE", "Asia/Kolkata")); err != nil {
		return cfg, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	if cfg.Workers, err = getEnvInt("ATTENDANCE_WORKERS", 4); err != nil {
		return cfg, err
	}
	if cfg.MaxAttempts, err = getEnvInt("ATTENDANCE_MAX_ATTEMPTS", 3); err != nil {
		return cfg, err
	}
	if cfg.RetryBackoff, err = time.ParseDuration(getEnv("ATTENDANCE_RETRY_BACKOFF", "200ms")); err != nil {
		return cfg, fmt.Errorf("invalid ATTENDANCE_RETRY_BACKOFF: %w", err)
	}
	return cfg, nil
}

func loadNotification() (NotificationConfig, error) {
	var (
		cfg NotificationConfig
		err error
	)
	if cfg.Workers, err = getEnvInt("NOTIFICATION_WORKERS", 2); err != nil {
		return cfg, err
	}
	if cfg.BatchSize, err = getEnvInt("NOTIFICATION_BATCH_SIZE", 100); err != nil {
		return cfg, err
	}
	if cfg.QueueSize, err = getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000); err != nil {
		return cfg, err
	}
	if cfg.FlushInterval, err = time.ParseDuration(getEnv("NOTIFICATION_FLUSH_INTERVAL", "5s")); err != nil {
		return cfg, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be postgres or memory, got %q", c.Storage.Driver)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_SIZE must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Approval.LockDays <= 0 {
		return fmt.Errorf("APPROVAL_LOCK_DAYS must be positive")
	}
	if c.Attendance.LAGrace < c.Attendance.OfficeStart {
		return fmt.Errorf("ATTENDANCE_LA_GRACE must not be before ATTENDANCE_OFFICE_START")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}

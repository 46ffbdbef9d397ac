package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Approval.LockDays)
	assert.Equal(t, "09:15:00", cfg.Attendance.LAGrace.String())
	assert.Equal(t, "17:30:00", cfg.Attendance.FullDayOut.String())
	assert.Equal(t, 200*time.Millisecond, cfg.Attendance.RetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.Notification.FlushInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APPROVAL_LOCK_DAYS", "45")
	t.Setenv("ATTENDANCE_LA_GRACE", "09:30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Approval.LockDays)
	assert.Equal(t, "09:30:00", cfg.Attendance.LAGrace.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo", "JWT_SECRET_KEY": "secret"}},
		{"postgres without password", map[string]string{"STORAGE_DRIVER": "postgres", "JWT_SECRET_KEY": "secret", "DB_PASSWORD": ""}},
		{"missing secret", map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": ""}},
		{"bad port", map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "secret", "APP_PORT": "http"}},
		{"bad time", map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "secret", "ATTENDANCE_OFFICE_START": "9am"}},
		{"bad hour", map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "secret", "ATTENDANCE_RECONCILE_HOUR": "24"}},
		{"grace before start", map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "secret", "ATTENDANCE_LA_GRACE": "08:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

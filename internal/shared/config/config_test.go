package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shifttrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Storage.Timeout())
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 500, cfg.Shift.NoteMaxLength)
	assert.Equal(t, 51.5074, cfg.Geofence.DefaultLatitude)
	assert.Equal(t, -0.1278, cfg.Geofence.DefaultLongitude)
	assert.Equal(t, 2000.0, cfg.Geofence.DefaultRadius)
}

func TestLoadFileYAMLAndEnvOverride(t *testing.T) {
	path := writeFile(t, `
storage:
  driver: bolt
  bolt_path: /tmp/x.db
  timeout_seconds: 2
http:
  port: 8081
geofence:
  default_latitude: 40.7128
  default_longitude: -74.006
  default_radius: 500
rabbitmq:
  enabled: true
`)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, StorageBolt, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.BoltPath)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout())
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 40.7128, cfg.Geofence.DefaultLatitude)
	assert.Equal(t, 500.0, cfg.Geofence.DefaultRadius)
	assert.True(t, cfg.RabbitMQ.Enabled)
	// не заданное в файле остается по умолчанию
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "storage:\n  driver: redis\n"},
		{"zero radius", "geofence:\n  default_radius: 0\n"},
		{"zero timeout", "storage:\n  timeout_seconds: 0\n"},
		{"empty secret", "jwt:\n  secret: \"  \"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileBadYAML(t *testing.T) {
	_, err := LoadFile(writeFile(t, "storage: [unterminated"))
	assert.Error(t, err)
}

func TestDSNAndAMQPURL(t *testing.T) {
	db := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", db.DSN())

	mq := MQConfig{Host: "mq", Port: 5672, User: "guest", Password: "guest", VHost: "/"}
	assert.Equal(t, "amqp://guest:guest@mq:5672/", mq.AMQPURL())
}

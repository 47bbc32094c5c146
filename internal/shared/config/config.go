package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"shifttrack/internal/geofence"
)

// Config: полная конфигурация сервиса
type Config struct {
	Database DBConfig       `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	RabbitMQ MQConfig       `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`
	JWT      JWTConfig      `yaml:"jwt"`
	Geofence GeofenceConfig `yaml:"geofence"`
	Shift    ShiftConfig    `yaml:"shift"`
	Log      LogConfig      `yaml:"log"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns           int32 `yaml:"max_conns"`
	MinConns           int32 `yaml:"min_conns"`
	ConnectTimeoutSecs int   `yaml:"connect_timeout_seconds"`
}

// Драйверы хранилища
const (
	StoragePostgres = "postgres"
	StorageBolt     = "bolt"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	Driver         string `yaml:"driver"`
	BoltPath       string `yaml:"bolt_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout: лимит на одну операцию с хранилищем
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type MQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type HTTPConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	ExpiryMinutes int    `yaml:"expiry_minutes"`
}

type GeofenceConfig struct {
	DefaultLatitude  float64 `yaml:"default_latitude"`
	DefaultLongitude float64 `yaml:"default_longitude"`
	DefaultRadius    float64 `yaml:"default_radius"`
}

// Perimeter: периметр, пока менеджер не задал свой
func (c GeofenceConfig) Perimeter() geofence.Perimeter {
	return geofence.Perimeter{
		Latitude:  c.DefaultLatitude,
		Longitude: c.DefaultLongitude,
		Radius:    c.DefaultRadius,
	}
}

type ShiftConfig struct {
	NoteMaxLength int `yaml:"note_max_length"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	Dir    string `yaml:"dir"`
}

// Defaults возвращает конфигурацию по умолчанию
func Defaults() Config {
	return Config{
		Database: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "shifttrack_user",
			Password: "shifttrack_pass",
			Database: "shifttrack_db",
			SSLMode:  "disable",

			MaxConns:           20,
			MinConns:           2,
			ConnectTimeoutSecs: 5,
		},
		Storage: StorageConfig{
			Driver:         StoragePostgres,
			BoltPath:       "./data/shifttrack.db",
			TimeoutSeconds: 5,
		},
		RabbitMQ: MQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			VHost:    "/",
		},
		HTTP: HTTPConfig{Port: 3000},
		JWT: JWTConfig{
			Secret:        "dev_secret",
			ExpiryMinutes: 720,
		},
		Geofence: GeofenceConfig{
			DefaultLatitude:  51.5074,
			DefaultLongitude: -0.1278,
			DefaultRadius:    2000,
		},
		Shift: ShiftConfig{NoteMaxLength: 500},
		Log:   LogConfig{Level: "info"},
	}
}

// Load: .env, затем YAML из CONFIG_FILE (по умолчанию ./config/shifttrack.yaml), затем ENV перекрывает
func Load() (Config, error) {
	// .env опционален
	_ = godotenv.Load()

	path := getEnv("CONFIG_FILE", filepath.Join("config", "shifttrack.yaml"))
	return LoadFile(path)
}

// LoadFile читает конкретный файл; отсутствие файла не ошибка
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(cfg.Database.MaxConns)))

	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.Storage.Driver))
	cfg.Storage.BoltPath = getEnv("STORAGE_BOLT_PATH", cfg.Storage.BoltPath)
	cfg.Storage.TimeoutSeconds = getEnvInt("STORAGE_TIMEOUT_SECONDS", cfg.Storage.TimeoutSeconds)

	cfg.RabbitMQ.Enabled = getEnvBool("RABBITMQ_ENABLED", cfg.RabbitMQ.Enabled)
	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", cfg.RabbitMQ.Port)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", cfg.RabbitMQ.User)
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)
	cfg.RabbitMQ.VHost = getEnv("RABBITMQ_VHOST", cfg.RabbitMQ.VHost)

	cfg.HTTP.Port = getEnvInt("HTTP_PORT", cfg.HTTP.Port)
	if v := getEnv("HTTP_ALLOWED_ORIGINS", ""); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpiryMinutes = getEnvInt("JWT_EXPIRY_MINUTES", cfg.JWT.ExpiryMinutes)

	cfg.Geofence.DefaultLatitude = getEnvFloat("GEOFENCE_DEFAULT_LATITUDE", cfg.Geofence.DefaultLatitude)
	cfg.Geofence.DefaultLongitude = getEnvFloat("GEOFENCE_DEFAULT_LONGITUDE", cfg.Geofence.DefaultLongitude)
	cfg.Geofence.DefaultRadius = getEnvFloat("GEOFENCE_DEFAULT_RADIUS", cfg.Geofence.DefaultRadius)

	cfg.Shift.NoteMaxLength = getEnvInt("SHIFT_NOTE_MAX_LENGTH", cfg.Shift.NoteMaxLength)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = getEnvBool("LOG_PRETTY", cfg.Log.Pretty)
	cfg.Log.Dir = getEnv("LOG_DIR", cfg.Log.Dir)
}

// Validate проверяет значения, без которых сервис не стартует
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StoragePostgres, StorageBolt, StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == StorageBolt && c.Storage.BoltPath == "" {
		return errors.New("config: storage.bolt_path is required for bolt driver")
	}
	if c.Storage.TimeoutSeconds <= 0 {
		return errors.New("config: storage.timeout_seconds must be positive")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return errors.New("config: jwt.expiry_minutes must be positive")
	}
	if err := c.Geofence.Perimeter().Validate(); err != nil {
		return fmt.Errorf("config: geofence: %w", err)
	}
	if c.Shift.NoteMaxLength <= 0 {
		return errors.New("config: shift.note_max_length must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN возвращает строку подключения к БД
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"clinic-api/internal/platform/pg"
)

// Config holds application configuration values.
type Config struct {
	Env  string `validate:"required,oneof=dev prod"`
	HTTP struct {
		Addr string `validate:"required"`
	}
	DB struct {
		URL            string `validate:"required"`
		MigrationsPath string
	}
	// DBParts is consulted only when DATABASE_URL is unset; the URL is then
	// built through the DSN builder.
	DBParts struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	JWT struct {
		Secret string `validate:"required,min=16"`
		Issuer string `validate:"required"`
		TTL    time.Duration
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
	Telegram struct {
		Token  string
		ChatID int64
	}
	Jobs struct {
		CompleteAppointments string
		CloseSchedules       string
	}
	Upload struct {
		Dir     string
		MaxSize int64
	}
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Env = getenv("ENV", "prod")
	c.HTTP.Addr = getenv("HTTP_ADDR", ":8080")
	c.DB.URL = os.Getenv("DATABASE_URL")
	c.DB.MigrationsPath = migrationsSourceURL(getenv("DB_MIGRATIONS_PATH", "migrations"))
	c.DBParts.Host = getenv("DB_HOST", "localhost")
	c.DBParts.User = os.Getenv("DB_USER")
	c.DBParts.Password = os.Getenv("DB_PASSWORD")
	c.DBParts.Name = os.Getenv("DB_NAME")
	c.DBParts.SSLMode = getenv("DB_SSLMODE", "disable")
	if raw := getenv("DB_PORT", "5432"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("DB_PORT: %w", err)
		}
		c.DBParts.Port = port
	}
	if c.DB.URL == "" && c.DBParts.Name != "" {
		c.DB.URL = pg.BuildDSN(pg.DSNConfig{
			Host:            c.DBParts.Host,
			Port:            c.DBParts.Port,
			User:            c.DBParts.User,
			Password:        c.DBParts.Password,
			Database:        c.DBParts.Name,
			SSLMode:         c.DBParts.SSLMode,
			ApplicationName: "clinic-api",
		})
	}
	c.JWT.Secret = os.Getenv("JWT_SECRET")
	c.JWT.Issuer = getenv("JWT_ISSUER", "clinic-api")
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/api.log")
	c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Jobs.CompleteAppointments = getenv("JOB_COMPLETE_APPOINTMENTS", "@hourly")
	c.Jobs.CloseSchedules = getenv("JOB_CLOSE_SCHEDULES", "30 2 * * *")
	c.Upload.Dir = getenv("UPLOAD_DIR", "data/uploads")

	ttl, err := time.ParseDuration(getenv("JWT_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_TTL: %w", err)
	}
	c.JWT.TTL = ttl

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = chatID
	}

	maxSize, err := strconv.ParseInt(getenv("UPLOAD_MAX_SIZE", "5242880"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("UPLOAD_MAX_SIZE: %w", err)
	}
	c.Upload.MaxSize = maxSize

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return Config{}, errors.New("TELEGRAM_CHAT_ID required when TELEGRAM_BOT_TOKEN is set")
	}
	return c, nil
}

// migrationsSourceURL accepts either a golang-migrate source URL or a bare
// directory path; bare paths get the file:// scheme so they parse as a
// migrate source.
func migrationsSourceURL(p string) string {
	if strings.Contains(p, "://") {
		return p
	}
	return "file://" + p
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

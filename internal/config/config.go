package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	UploadDir string

	// PublicBaseURL is the externally visible address used in password
	// reset links. When empty, the request's own host is used, which is
	// only safe behind a proxy that pins the Host header.
	PublicBaseURL string

	// SMTP settings; when host/user/pass are unset, outbound mail falls
	// back to logging the message body instead of sending.
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SenderEmail   string
	RecoveryEmail string

	// MetalsURL is the XML feed queried for the advisory gold rate.
	MetalsURL string
}

// NewConfig loads configuration from environment variables. A .env file in
// the working directory is read first if present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=pawn password=pawn dbname=pawn sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASS", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", "no-reply@localhost"),
		RecoveryEmail: getEnv("RECOVERY_EMAIL", ""),
		MetalsURL:     getEnv("METALS_URL", "https://www.cbr.ru/scripts/xml_metall.asp"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// SMTPConfigured reports whether outbound email can actually be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

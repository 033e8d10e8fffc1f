package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// First back-office account, created at startup when set
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// Chat completion upstream
	LLMURL           string
	LLMAPIKey        string
	LLMModel         string
	ChatSettingsPath string // optional YAML with system prompt and action rules
	ChatMaxMessages  int    // Conversation turns forwarded upstream

	// Exchange rates for the forecast dashboard
	ECBURL string

	// Analytics transport, disabled when no brokers are set
	KafkaBrokers        []string
	KafkaAnalyticsTopic string

	// Mail
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SenderEmail     string
	ReportRecipient string

	// Scheduled forecast report
	ForecastReportCron string
	EnableReports      bool
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5432 user=advisory password=advisory dbname=advisory sslmode=disable"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		LLMURL:           getEnv("LLM_URL", "https://api.openai.com/v1/chat/completions"),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		ChatSettingsPath: getEnv("CHAT_SETTINGS_PATH", ""),
		ChatMaxMessages:  getEnvInt("CHAT_MAX_MESSAGES", 20),

		ECBURL: getEnv("ECB_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"),

		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaAnalyticsTopic: getEnv("KAFKA_ANALYTICS_TOPIC", "site.analytics"),

		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "no-reply@localhost"),
		ReportRecipient: getEnv("REPORT_RECIPIENT", ""),

		ForecastReportCron: getEnv("FORECAST_REPORT_CRON", "0 8 * * MON"),
		EnableReports:      getEnvBool("ENABLE_REPORTS", false),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if cfg.LLMURL == "" {
		return nil, fmt.Errorf("LLM_URL is required")
	}
	if cfg.ChatMaxMessages < 1 {
		return nil, fmt.Errorf("CHAT_MAX_MESSAGES must be positive, got %d", cfg.ChatMaxMessages)
	}
	if cfg.EnableReports && cfg.ReportRecipient == "" {
		return nil, fmt.Errorf("REPORT_RECIPIENT is required when ENABLE_REPORTS is set")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultVal
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

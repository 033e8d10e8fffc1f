package config

import (
	"os"
	"reflect"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CHAT_MAX_MESSAGES", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ENABLE_REPORTS", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("FORECAST_REPORT_CRON", "")
	os.Unsetenv("FORECAST_REPORT_CRON")
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ChatMaxMessages != 20 || cfg.ForecastReportCron != "0 8 * * MON" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no brokers, got %#v", cfg.KafkaBrokers)
	}
	if cfg.AdminEmail != "" || cfg.AdminPassword != "" {
		t.Fatalf("expected no admin bootstrap, got %#v", cfg)
	}
}

func TestNewConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("CHAT_MAX_MESSAGES", "8")
	t.Setenv("ENABLE_REPORTS", "true")
	t.Setenv("REPORT_RECIPIENT", "partners@example.com")
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Fatalf("unexpected brokers: %#v", cfg.KafkaBrokers)
	}
	if cfg.ChatMaxMessages != 8 || !cfg.EnableReports {
		t.Fatalf("unexpected overrides: %#v", cfg)
	}
}

func TestNewConfigReportsNeedRecipient(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENABLE_REPORTS", "true")
	t.Setenv("REPORT_RECIPIENT", "")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected missing recipient error")
	}
}

func TestNewConfigAdminBootstrap(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENABLE_REPORTS", "")
	t.Setenv("ADMIN_USERNAME", "")
	os.Unsetenv("ADMIN_USERNAME")
	t.Setenv("ADMIN_EMAIL", "partner@example.com")
	t.Setenv("ADMIN_PASSWORD", "correct-horse")
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.AdminUsername != "admin" || cfg.AdminEmail != "partner@example.com" || cfg.AdminPassword != "correct-horse" {
		t.Fatalf("unexpected admin settings: %#v", cfg)
	}
}

func TestNewConfigAdminNeedsBothFields(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENABLE_REPORTS", "")
	t.Setenv("ADMIN_EMAIL", "partner@example.com")
	t.Setenv("ADMIN_PASSWORD", "")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected incomplete admin bootstrap error")
	}
}

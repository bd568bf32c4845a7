package config

import (
	"strings"
	"testing"
	"time"
)

func productionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		LogLevel:             "info",
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 32),
		SessionMaxAge:        7 * 24 * time.Hour,
		DBLockTimeout:        5 * time.Second,
		NotifyTransport:      TransportEventBus,
	}
}

func TestValidateForProduction_NonProductionSkipped(t *testing.T) {
	cfg := &Config{Environment: EnvDevelopment, LogLevel: "debug"}
	if err := ValidateForProduction(cfg); err != nil {
		t.Fatalf("expected nil for development, got %v", err)
	}
}

func TestValidateForProduction_Valid(t *testing.T) {
	if err := ValidateForProduction(productionConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateForProduction_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short auth key", func(c *Config) { c.SessionAuthKey = "short" }, "SESSION_AUTH_KEY"},
		{"short encryption key", func(c *Config) { c.SessionEncryptionKey = "short" }, "SESSION_ENCRYPTION_KEY"},
		{"debug logging", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
		{"sessions that never last", func(c *Config) { c.SessionMaxAge = 0 }, "SESSION_MAX_AGE"},
		{"unbounded lock wait", func(c *Config) { c.DBLockTimeout = 0 }, "DB_LOCK_TIMEOUT"},
		{"kafka without brokers", func(c *Config) {
			c.NotifyTransport = TransportKafka
			c.KafkaBrokers = " , "
		}, "KAFKA_BROKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestKafkaBrokerList(t *testing.T) {
	cfg := &Config{KafkaBrokers: "k1:9092, k2:9092,,"}
	got := cfg.KafkaBrokerList()
	if len(got) != 2 || got[0] != "k1:9092" || got[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type OffersConfig struct {
	// AllowedTerms is the closed set of contract lengths an offer may carry.
	AllowedTerms []int
}

type DocumentsConfig struct {
	Dir     string
	Timeout time.Duration
}

type NotifyConfig struct {
	QueueSize int
	Timeout   time.Duration
}

type LessorConfig struct {
	CompanyName string
	BusinessID  string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Offers      OffersConfig
	Documents   DocumentsConfig
	Notify      NotifyConfig
	Lessor      LessorConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Offers: OffersConfig{
			AllowedTerms: parseIntList(v.GetString("OFFER_ALLOWED_TERMS")),
		},
		Documents: DocumentsConfig{
			Dir:     v.GetString("DOCUMENTS_DIR"),
			Timeout: v.GetDuration("DOCUMENTS_TIMEOUT"),
		},
		Notify: NotifyConfig{
			QueueSize: v.GetInt("NOTIFY_QUEUE_SIZE"),
			Timeout:   v.GetDuration("NOTIFY_TIMEOUT"),
		},
		Lessor: LessorConfig{
			CompanyName: v.GetString("LESSOR_COMPANY_NAME"),
			BusinessID:  v.GetString("LESSOR_BUSINESS_ID"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.Offers.AllowedTerms) == 0 {
		cfg.Offers.AllowedTerms = []int{12, 24, 36, 48, 60}
	}
	if cfg.Documents.Dir == "" {
		cfg.Documents.Dir = "./documents"
	}
	if cfg.Documents.Timeout == 0 {
		cfg.Documents.Timeout = 10 * time.Second
	}
	if cfg.Notify.QueueSize == 0 {
		cfg.Notify.QueueSize = 256
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 5 * time.Second
	}
	if cfg.Lessor.CompanyName == "" {
		cfg.Lessor.CompanyName = "Konelease Oy"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

// TermAllowed reports whether months is one of the configured offer terms.
func (c OffersConfig) TermAllowed(months int) bool {
	for _, term := range c.AllowedTerms {
		if term == months {
			return true
		}
	}
	return false
}

func parseIntList(raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]int, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		value, err := strconv.Atoi(item)
		if err != nil {
			continue
		}
		result = append(result, value)
	}
	return result
}

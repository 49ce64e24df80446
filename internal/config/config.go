package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/Turf-BookingService/internal/domain"
)

// Config конфигурация сервиса, загружается из TOML-файла
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        DatabaseConfig        `toml:"database"`
	Logs            LogsConfig            `toml:"logs"`
	Metrics         MetricsConfig         `toml:"metrics"`
	PaymentGateway  PaymentGatewayConfig  `toml:"payment_gateway"`
	FacilityService FacilityServiceConfig `toml:"facility_service"`
	Notifier        NotifierConfig        `toml:"notifier"`
	Policy          PolicyConfig          `toml:"policy"`
}

// ServerConfig настройки HTTP-сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN собирает строку подключения
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PaymentGatewayConfig настройки внешнего платежного шлюза
type PaymentGatewayConfig struct {
	URL      string `toml:"url"`
	KeyID    string `toml:"key_id"`
	Secret   string `toml:"secret"`
	Currency string `toml:"currency"`
	Timeout  int    `toml:"timeout"` // секунды
}

// FacilityServiceConfig настройки клиента сервиса площадок
type FacilityServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// NotifierConfig настройки клиента сервиса уведомлений
type NotifierConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// PolicyConfig политика отмен и комиссий.
// Нулевые значения заменяются дефолтами из domain при конвертации.
type PolicyConfig struct {
	RefundThresholdMinutes   int     `toml:"refund_threshold_minutes"`
	PlayerMonthlyCancelLimit int     `toml:"player_monthly_cancel_limit"`
	OwnerMonthlyCancelLimit  int     `toml:"owner_monthly_cancel_limit"`
	OwnerCancelFee           float64 `toml:"owner_cancel_fee"`
	OwnerPlatformFee         float64 `toml:"owner_platform_fee"`
	PlatformBookingFee       float64 `toml:"platform_booking_fee"`
	HoldTTLMinutes           int     `toml:"hold_ttl_minutes"`
	SweepIntervalSeconds     int     `toml:"sweep_interval_seconds"`
}

// ToDomain конвертирует в domain.CancellationPolicy, подставляя дефолты
func (p PolicyConfig) ToDomain() domain.CancellationPolicy {
	policy := domain.DefaultCancellationPolicy()

	if p.RefundThresholdMinutes > 0 {
		policy.RefundThreshold = time.Duration(p.RefundThresholdMinutes) * time.Minute
	}
	if p.PlayerMonthlyCancelLimit > 0 {
		policy.PlayerMonthlyCancelLimit = p.PlayerMonthlyCancelLimit
	}
	if p.OwnerMonthlyCancelLimit > 0 {
		policy.OwnerMonthlyCancelLimit = p.OwnerMonthlyCancelLimit
	}
	if p.OwnerCancelFee > 0 {
		policy.OwnerCancelFee = p.OwnerCancelFee
	}
	if p.OwnerPlatformFee > 0 {
		policy.OwnerPlatformFee = p.OwnerPlatformFee
	}
	if p.PlatformBookingFee > 0 {
		policy.PlatformBookingFee = p.PlatformBookingFee
	}
	if p.HoldTTLMinutes > 0 {
		policy.HoldTTL = time.Duration(p.HoldTTLMinutes) * time.Minute
	}

	return policy
}

// SweepInterval период фонового освобождения истекших удержаний
func (p PolicyConfig) SweepInterval() time.Duration {
	if p.SweepIntervalSeconds > 0 {
		return time.Duration(p.SweepIntervalSeconds) * time.Second
	}
	return domain.DefaultSweepInterval
}

// Load загружает конфигурацию из TOML-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if c.PaymentGateway.Secret == "" {
		return fmt.Errorf("config: payment_gateway.secret is required")
	}
	if c.PaymentGateway.Currency == "" {
		c.PaymentGateway.Currency = "INR"
	}
	return nil
}

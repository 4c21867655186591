package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Coordination CoordinationConfig
	Settlement   SettlementConfig
	Commission   CommissionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Commission.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENDORFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDORFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDORFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORFLOW_DB_DSN" required:"true"`
	Driver string `envconfig:"VENDORFLOW_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"VENDORFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VENDORFLOW_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"VENDORFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VENDORFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PaymentsTopic  string `envconfig:"VENDORFLOW_PUBSUB_PAYMENTS_TOPIC" required:"true"`
	VendorOpsTopic string `envconfig:"VENDORFLOW_PUBSUB_VENDOR_OPS_TOPIC" required:"true"`
	ShippingTopic  string `envconfig:"VENDORFLOW_PUBSUB_SHIPPING_TOPIC" required:"true"`
	CustomerTopic  string `envconfig:"VENDORFLOW_PUBSUB_CUSTOMER_TOPIC" required:"true"`
}

// CoordinationConfig bounds a coordination run.
type CoordinationConfig struct {
	MaxStepRetries int           `envconfig:"VENDORFLOW_COORDINATION_MAX_STEP_RETRIES" default:"3"`
	ContextTTL     time.Duration `envconfig:"VENDORFLOW_COORDINATION_CONTEXT_TTL" default:"24h"`
	LeaseTTL       time.Duration `envconfig:"VENDORFLOW_COORDINATION_LEASE_TTL" default:"10m"`
}

// SettlementConfig carries the per-split financial knobs.
type SettlementConfig struct {
	TaxRateBps                 int           `envconfig:"VENDORFLOW_SETTLEMENT_TAX_RATE_BPS" default:"800"`
	ShippingBaseCents          int           `envconfig:"VENDORFLOW_SETTLEMENT_SHIPPING_BASE_CENTS" default:"500"`
	ShippingPerKgCents         int           `envconfig:"VENDORFLOW_SETTLEMENT_SHIPPING_PER_KG_CENTS" default:"150"`
	FreeShippingThresholdCents int           `envconfig:"VENDORFLOW_SETTLEMENT_FREE_SHIPPING_THRESHOLD_CENTS" default:"100000"`
	LeadTimeWithHub            time.Duration `envconfig:"VENDORFLOW_SETTLEMENT_LEAD_TIME_WITH_HUB" default:"72h"`
	LeadTimeDefault            time.Duration `envconfig:"VENDORFLOW_SETTLEMENT_LEAD_TIME_DEFAULT" default:"120h"`
	ReconcileToleranceCents    int           `envconfig:"VENDORFLOW_SETTLEMENT_RECONCILE_TOLERANCE_CENTS" default:"1"`
}

// CommissionConfig provides platform defaults when no stored rule applies.
type CommissionConfig struct {
	DefaultRateBps int `envconfig:"VENDORFLOW_COMMISSION_DEFAULT_RATE_BPS" default:"1000"`

	TierCapStandardBps int `envconfig:"VENDORFLOW_COMMISSION_TIER_CAP_STANDARD_BPS" default:"2000"`
	TierCapSilverBps   int `envconfig:"VENDORFLOW_COMMISSION_TIER_CAP_SILVER_BPS" default:"1500"`
	TierCapGoldBps     int `envconfig:"VENDORFLOW_COMMISSION_TIER_CAP_GOLD_BPS" default:"1200"`
	TierCapPlatinumBps int `envconfig:"VENDORFLOW_COMMISSION_TIER_CAP_PLATINUM_BPS" default:"800"`

	VolumeTier1ThresholdCents int64 `envconfig:"VENDORFLOW_COMMISSION_VOLUME_TIER1_THRESHOLD_CENTS" default:"5000000"`
	VolumeTier1DiscountBps    int   `envconfig:"VENDORFLOW_COMMISSION_VOLUME_TIER1_DISCOUNT_BPS" default:"100"`
	VolumeTier2ThresholdCents int64 `envconfig:"VENDORFLOW_COMMISSION_VOLUME_TIER2_THRESHOLD_CENTS" default:"20000000"`
	VolumeTier2DiscountBps    int   `envconfig:"VENDORFLOW_COMMISSION_VOLUME_TIER2_DISCOUNT_BPS" default:"250"`
}

func (c CommissionConfig) validate() error {
	if c.DefaultRateBps < 0 || c.DefaultRateBps > 10000 {
		return fmt.Errorf("default commission rate must be within [0, 10000] bps, got %d", c.DefaultRateBps)
	}
	if c.VolumeTier2ThresholdCents < c.VolumeTier1ThresholdCents {
		return fmt.Errorf("volume tier thresholds must be ascending")
	}
	if c.VolumeTier2DiscountBps < c.VolumeTier1DiscountBps {
		return fmt.Errorf("volume tier discounts must be non-decreasing")
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VENDORFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VENDORFLOW_AUTO_MIGRATE" default:"false"`
}

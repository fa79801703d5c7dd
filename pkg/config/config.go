package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	VNPay    VNPayConfig
	Checkout CheckoutConfig
	Warranty WarrantyConfig
	Features FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.VNPay.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LUMENSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"LUMENSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LUMENSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LUMENSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LUMENSHOP_DB_DSN"`
	Driver string `envconfig:"LUMENSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LUMENSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"LUMENSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LUMENSHOP_DB_USER"`
	LegacyPassword string `envconfig:"LUMENSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"LUMENSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"LUMENSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LUMENSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LUMENSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LUMENSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LUMENSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LUMENSHOP_REDIS_URL"`
	Address      string        `envconfig:"LUMENSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"LUMENSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"LUMENSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LUMENSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LUMENSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LUMENSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LUMENSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LUMENSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// VNPayConfig carries the merchant credentials and endpoints for the
// hosted-payment redirect flow.
type VNPayConfig struct {
	TmnCode    string `envconfig:"LUMENSHOP_VNPAY_TMN_CODE"`
	HashSecret string `envconfig:"LUMENSHOP_VNPAY_HASH_SECRET"`
	PayURL     string `envconfig:"LUMENSHOP_VNPAY_PAY_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	ReturnURL  string `envconfig:"LUMENSHOP_VNPAY_RETURN_URL"`
	Version    string `envconfig:"LUMENSHOP_VNPAY_VERSION" default:"2.1.0"`
	Locale     string `envconfig:"LUMENSHOP_VNPAY_LOCALE" default:"vn"`
	CurrCode   string `envconfig:"LUMENSHOP_VNPAY_CURR_CODE" default:"VND"`
}

func (v VNPayConfig) validate() error {
	if v.TmnCode == "" {
		return fmt.Errorf("%s is required", EnvVNPayTmnCode)
	}
	if v.HashSecret == "" {
		return fmt.Errorf("%s is required", EnvVNPayHashSecret)
	}
	if v.ReturnURL == "" {
		return fmt.Errorf("%s is required", EnvVNPayReturnURL)
	}
	return nil
}

type CheckoutConfig struct {
	MaxAttempts  int           `envconfig:"LUMENSHOP_CHECKOUT_MAX_ATTEMPTS" default:"3"`
	RetryBackoff time.Duration `envconfig:"LUMENSHOP_CHECKOUT_RETRY_BACKOFF" default:"25ms"`
}

type WarrantyConfig struct {
	DefaultMonths int           `envconfig:"LUMENSHOP_WARRANTY_DEFAULT_MONTHS" default:"12"`
	CallbackTTL   time.Duration `envconfig:"LUMENSHOP_PAYMENT_CALLBACK_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LUMENSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LUMENSHOP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	GuestCart     GuestCartConfig
	Storefront    StorefrontConfig
	Square        SquareConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOUNGELAB_APP_ENV" required:"true"`
	Port         string `envconfig:"LOUNGELAB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOUNGELAB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOUNGELAB_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"LOUNGELAB_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOUNGELAB_DB_DSN"`
	Driver string `envconfig:"LOUNGELAB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"LOUNGELAB_DB_HOST"`
	Port     int    `envconfig:"LOUNGELAB_DB_PORT" default:"5432"`
	User     string `envconfig:"LOUNGELAB_DB_USER"`
	Password string `envconfig:"LOUNGELAB_DB_PASSWORD"`
	Name     string `envconfig:"LOUNGELAB_DB_NAME"`
	SSLMode  string `envconfig:"LOUNGELAB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOUNGELAB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOUNGELAB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOUNGELAB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOUNGELAB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOUNGELAB_REDIS_URL"`
	Address      string        `envconfig:"LOUNGELAB_REDIS_ADDR"`
	Password     string        `envconfig:"LOUNGELAB_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOUNGELAB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOUNGELAB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOUNGELAB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOUNGELAB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOUNGELAB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOUNGELAB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LOUNGELAB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LOUNGELAB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LOUNGELAB_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LOUNGELAB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOUNGELAB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOUNGELAB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOUNGELAB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOUNGELAB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOUNGELAB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LOUNGELAB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LOUNGELAB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LOUNGELAB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LOUNGELAB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LOUNGELAB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LOUNGELAB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// GuestCartConfig tunes the anonymous cart storage chain.
type GuestCartConfig struct {
	TTL          time.Duration `envconfig:"LOUNGELAB_GUEST_CART_TTL" default:"720h"`
	FallbackDir  string        `envconfig:"LOUNGELAB_GUEST_CART_FALLBACK_DIR" default:"/tmp/loungelab-carts"`
	MemoryOnly   bool          `envconfig:"LOUNGELAB_GUEST_CART_MEMORY_ONLY" default:"false"`
	MaxLineCount int           `envconfig:"LOUNGELAB_GUEST_CART_MAX_LINES" default:"50"`
}

// StorefrontConfig describes the single product this storefront sells.
type StorefrontConfig struct {
	ProductID   string `envconfig:"LOUNGELAB_STOREFRONT_PRODUCT_ID" required:"true"`
	ProductName string `envconfig:"LOUNGELAB_STOREFRONT_PRODUCT_NAME" default:"Cloud Sweatpants"`
	Currency    string `envconfig:"LOUNGELAB_STOREFRONT_CURRENCY" default:"USD"`
	RedirectURL string `envconfig:"LOUNGELAB_STOREFRONT_REDIRECT_URL"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"LOUNGELAB_SQUARE_ACCESS_TOKEN"`
	Environment string `envconfig:"LOUNGELAB_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"LOUNGELAB_SQUARE_LOCATION_ID"`
}

type FeatureFlagsConfig struct {
	AutoMigrate        bool `envconfig:"LOUNGELAB_AUTO_MIGRATE" default:"false"`
	ProvisionCustomers bool `envconfig:"LOUNGELAB_FEATURE_PROVISION_CUSTOMERS" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

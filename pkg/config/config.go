package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Catalog      CatalogConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Optimizer    OptimizerConfig
	Search       SearchConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Catalog.UsesDB() {
		if err := cfg.DB.EnsureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"XFINDS_APP_ENV" required:"true"`
	Port         string `envconfig:"XFINDS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"XFINDS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"XFINDS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"XFINDS_LOG_WARN_STACK" default:"false"`
	PublicSource string `envconfig:"XFINDS_TRACKING_SOURCE" default:"xfinds"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CatalogConfig struct {
	Source   string        `envconfig:"XFINDS_CATALOG_SOURCE" default:"file"`
	DataDir  string        `envconfig:"XFINDS_CATALOG_DATA_DIR" default:"data"`
	CacheTTL time.Duration `envconfig:"XFINDS_CATALOG_CACHE_TTL" default:"5m"`

	// WarmInterval reloads the cache in the background; zero disables warming.
	WarmInterval time.Duration `envconfig:"XFINDS_CATALOG_WARM_INTERVAL" default:"4m"`
}

// UsesDB reports whether the catalog is served from the SQL database instead of JSON files.
func (c CatalogConfig) UsesDB() bool {
	return strings.EqualFold(c.Source, CatalogSourceDB)
}

type DBConfig struct {
	DSN    string `envconfig:"XFINDS_DB_DSN"`
	Driver string `envconfig:"XFINDS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"XFINDS_DB_HOST"`
	Port     int    `envconfig:"XFINDS_DB_PORT" default:"5432"`
	User     string `envconfig:"XFINDS_DB_USER"`
	Password string `envconfig:"XFINDS_DB_PASSWORD"`
	Name     string `envconfig:"XFINDS_DB_NAME"`
	SSLMode  string `envconfig:"XFINDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"XFINDS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"XFINDS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"XFINDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"XFINDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"XFINDS_REDIS_URL"`
	Address      string        `envconfig:"XFINDS_REDIS_ADDR"`
	Password     string        `envconfig:"XFINDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"XFINDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"XFINDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"XFINDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"XFINDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"XFINDS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"XFINDS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Configured reports whether enough connection settings exist to dial redis.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type CartConfig struct {
	Store          string        `envconfig:"XFINDS_CART_STORE" default:"memory"`
	TTL            time.Duration `envconfig:"XFINDS_CART_TTL" default:"720h"`
	MaxItems       int           `envconfig:"XFINDS_CART_MAX_ITEMS" default:"50"`
	UpdateAttempts int           `envconfig:"XFINDS_CART_UPDATE_ATTEMPTS" default:"5"`
}

// UsesRedis reports whether carts are persisted in redis.
func (c CartConfig) UsesRedis() bool {
	return strings.EqualFold(c.Store, CartStoreRedis)
}

type OptimizerConfig struct {
	BruteForceLimit int  `envconfig:"XFINDS_OPTIMIZER_BRUTE_FORCE_LIMIT" default:"6"`
	MaxCombinations int  `envconfig:"XFINDS_OPTIMIZER_MAX_COMBINATIONS" default:"200000"`
	InStockOnly     bool `envconfig:"XFINDS_OPTIMIZER_IN_STOCK_ONLY" default:"false"`
}

type SearchConfig struct {
	PageSize     int `envconfig:"XFINDS_SEARCH_PAGE_SIZE" default:"12"`
	FeaturedSize int `envconfig:"XFINDS_SEARCH_FEATURED_SIZE" default:"6"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"XFINDS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig throttles the optimizer endpoints. Limiting needs redis; without it the
// limits are ignored.
type RateLimitConfig struct {
	OptimizeWindow       time.Duration `envconfig:"XFINDS_RATE_LIMIT_OPTIMIZE_WINDOW" default:"1m"`
	OptimizeIPLimit      int           `envconfig:"XFINDS_RATE_LIMIT_OPTIMIZE_IP" default:"60"`
	OptimizeSessionLimit int           `envconfig:"XFINDS_RATE_LIMIT_OPTIMIZE_SESSION" default:"20"`
}

// CronConfig drives cmd/cron-worker, which syncs the file catalog into the database.
type CronConfig struct {
	SyncInterval time.Duration `envconfig:"XFINDS_CRON_SYNC_INTERVAL" default:"1h"`
	SyncStrict   bool          `envconfig:"XFINDS_CRON_SYNC_STRICT" default:"false"`
	LockTTL      time.Duration `envconfig:"XFINDS_CRON_LOCK_TTL" default:"15m"`

	// EmbeddedSync runs the file to database sync inside the api process, which then
	// drops its catalog cache after each import. Only honoured with the db source.
	EmbeddedSync bool `envconfig:"XFINDS_CRON_EMBEDDED_SYNC" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"XFINDS_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Catalog.Source) {
	case CatalogSourceFile, CatalogSourceDB:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCatalogSource, CatalogSourceFile, CatalogSourceDB)
	}
	switch strings.ToLower(c.Cart.Store) {
	case CartStoreMemory:
	case CartStoreRedis:
		if !c.Redis.Configured() {
			return fmt.Errorf("%s=redis requires %s or %s", EnvCartStore, EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCartStore, CartStoreMemory, CartStoreRedis)
	}
	if c.Optimizer.BruteForceLimit < 0 {
		return fmt.Errorf("%s must not be negative", EnvOptimizerBruteForceLimit)
	}
	return nil
}

// EnsureDSN assembles the DSN from the split XFINDS_DB_* variables when none is set.
func (db *DBConfig) EnsureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
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

package config

const EnvPrefix = "XFINDS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CatalogSourceFile = "file"
	CatalogSourceDB   = "db"

	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                   = "XFINDS_APP_ENV"
	EnvPort                     = "XFINDS_APP_PORT"
	EnvCatalogSource            = "XFINDS_CATALOG_SOURCE"
	EnvCatalogDataDir           = "XFINDS_CATALOG_DATA_DIR"
	EnvCatalogCacheTTL          = "XFINDS_CATALOG_CACHE_TTL"
	EnvDBDSN                    = "XFINDS_DB_DSN"
	EnvDBDriver                 = "XFINDS_DB_DRIVER"
	EnvDBHost                   = "XFINDS_DB_HOST"
	EnvDBUser                   = "XFINDS_DB_USER"
	EnvDBPassword               = "XFINDS_DB_PASSWORD"
	EnvDBName                   = "XFINDS_DB_NAME"
	EnvRedisURL                 = "XFINDS_REDIS_URL"
	EnvRedisAddr                = "XFINDS_REDIS_ADDR"
	EnvCartStore                = "XFINDS_CART_STORE"
	EnvCartTTL                  = "XFINDS_CART_TTL"
	EnvOptimizerBruteForceLimit = "XFINDS_OPTIMIZER_BRUTE_FORCE_LIMIT"
	EnvOptimizerInStockOnly     = "XFINDS_OPTIMIZER_IN_STOCK_ONLY"
	EnvCORSAllowedOrigins       = "XFINDS_CORS_ALLOWED_ORIGINS"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

import (
	"fmt"
	"net/netip"
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
	Search        SearchConfig
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
	if err := cfg.validateLimits(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.TrustedProxyPrefixes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GROCEREASE_APP_ENV" default:"development"`
	Port         string `envconfig:"GROCEREASE_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"GROCEREASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROCEREASE_LOG_WARN_STACK" default:"false"`
	ClientURL    string `envconfig:"GROCEREASE_CLIENT_URL" default:"http://localhost:3000"`
	// TrustedProxies lists the CIDRs or IPs whose X-Forwarded-For headers are
	// honoured when resolving the client address.
	TrustedProxies []string `envconfig:"GROCEREASE_TRUSTED_PROXIES"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits CLIENT_URL on commas so several front-ends can share one API.
func (a AppConfig) AllowedOrigins() []string {
	origins := []string{}
	for _, raw := range strings.Split(a.ClientURL, ",") {
		if origin := strings.TrimRight(strings.TrimSpace(raw), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// TrustedProxyPrefixes parses TrustedProxies; a bare IP becomes a single-host
// prefix.
func (a AppConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(a.TrustedProxies))
	for _, raw := range a.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type DBConfig struct {
	DSN string `envconfig:"GROCEREASE_DB_DSN"`

	LegacyHost     string `envconfig:"GROCEREASE_DB_HOST"`
	LegacyPort     int    `envconfig:"GROCEREASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GROCEREASE_DB_USER"`
	LegacyPassword string `envconfig:"GROCEREASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GROCEREASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GROCEREASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROCEREASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROCEREASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROCEREASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROCEREASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; when neither URL nor address is set the API falls
// back to in-process cache, limiter and token revocation.
type RedisConfig struct {
	URL          string        `envconfig:"GROCEREASE_REDIS_URL"`
	Address      string        `envconfig:"GROCEREASE_REDIS_ADDR"`
	Password     string        `envconfig:"GROCEREASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROCEREASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROCEREASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCEREASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCEREASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCEREASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCEREASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"GROCEREASE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GROCEREASE_JWT_ISSUER" default:"grocerease"`
	ExpirationMinutes int    `envconfig:"GROCEREASE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GROCEREASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GROCEREASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GROCEREASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GROCEREASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GROCEREASE_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"GROCEREASE_PASSWORD_MIN_LENGTH" default:"6"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type SearchConfig struct {
	RateLimit      int           `envconfig:"GROCEREASE_SEARCH_RATE_LIMIT" default:"100"`
	RateWindow     time.Duration `envconfig:"GROCEREASE_SEARCH_RATE_WINDOW" default:"1m"`
	FilterCacheTTL time.Duration `envconfig:"GROCEREASE_FILTER_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROCEREASE_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validateLimits() error {
	limits := []struct {
		env   string
		value int
	}{
		{"GROCEREASE_SEARCH_RATE_LIMIT", c.Search.RateLimit},
		{"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT", c.AuthRateLimit.LoginEmailLimit},
		{"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT", c.AuthRateLimit.LoginIPLimit},
		{"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT", c.AuthRateLimit.RegisterEmailLimit},
		{"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT", c.AuthRateLimit.RegisterIPLimit},
	}
	for _, l := range limits {
		if l.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", l.env, l.value)
		}
	}

	windows := []struct {
		env   string
		value time.Duration
	}{
		{"GROCEREASE_SEARCH_RATE_WINDOW", c.Search.RateWindow},
		{"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_WINDOW", c.AuthRateLimit.LoginWindow},
		{"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_WINDOW", c.AuthRateLimit.RegisterWindow},
	}
	for _, w := range windows {
		if w.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", w.env, w.value)
		}
	}
	return nil
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

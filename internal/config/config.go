// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Ops       OpsConfig       `yaml:"ops"`
	Auth      AuthConfig      `yaml:"auth"`
	Vault     VaultConfig     `yaml:"vault"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки основного API-сервера.
// CookieSecret подписывает значения cookie (HMAC); подмена значения на
// клиенте ломает подпись и трактуется как отсутствие cookie.
type HTTPConfig struct {
	Host         string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string `yaml:"port" env:"HTTP_PORT" env-default:"3005"`
	CookieSecret string `yaml:"cookie_secret" env:"COOKIE_SECRET" env-required:"true"`
}

// OpsConfig — сетевые настройки сервисного эндпойнта (/livez, /healthz, /metrics).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"3006"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (o OpsConfig) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
//
// Секреты access/refresh/unsubscribe обязаны быть различными: это исключает
// кросс-использование токенов разных классов.
type AuthConfig struct {
	AccessSecret      string        `yaml:"access_secret" env:"JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret     string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	UnsubscribeSecret string        `yaml:"unsubscribe_secret" env:"UNSUBSCRIBE_SECRET" env-required:"true"`
	AccessTokenTTL    time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL   time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	UnsubscribeTTL    time.Duration `yaml:"unsubscribe_ttl" env:"UNSUBSCRIBE_TTL" env-default:"15m"`
}

// VaultConfig — параметры шифрования секретов в БД.
type VaultConfig struct {
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY" env-required:"true"`
}

// OAuthConfig — параметры обмена кода у внешних провайдеров.
type OAuthConfig struct {
	GoogleClientID     string        `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `yaml:"google_client_secret" env:"GOOGLE_CLIENT_SECRET"`
	GithubClientID     string        `yaml:"github_client_id" env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string        `yaml:"github_client_secret" env:"GITHUB_CLIENT_SECRET"`
	AppURL             string        `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:3005"`
	ExchangeTimeout    time.Duration `yaml:"exchange_timeout" env:"OAUTH_EXCHANGE_TIMEOUT" env-default:"10s"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки подключения к Redis (хранилище rate-limiter).
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
}

// LimitConfig — пара (окно, потолок) для группы маршрутов.
type LimitConfig struct {
	Window time.Duration `yaml:"window"`
	Max    int64         `yaml:"max"`
}

// RateLimitConfig — лимиты по группам маршрутов (значения из исходного продукта).
type RateLimitConfig struct {
	Auth        LimitConfig `yaml:"auth"`
	Session     LimitConfig `yaml:"session"`
	General     LimitConfig `yaml:"general"`
	External    LimitConfig `yaml:"external"`
	Unsubscribe LimitConfig `yaml:"unsubscribe"`
	Health      LimitConfig `yaml:"health"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// withDefaults подставляет дефолтные лимиты для незаполненных групп.
// cleanenv не умеет env-default для вложенных структур с Duration-полями,
// поэтому дефолты группы живут здесь.
func (c *Config) withDefaults() {
	def := func(l *LimitConfig, window time.Duration, max int64) {
		if l.Window <= 0 || l.Max <= 0 {
			l.Window = window
			l.Max = max
		}
	}

	def(&c.RateLimit.Auth, time.Hour, 15)
	def(&c.RateLimit.Session, time.Hour, 80)
	def(&c.RateLimit.General, time.Hour, 70)
	def(&c.RateLimit.External, time.Minute, 9)
	def(&c.RateLimit.Unsubscribe, time.Minute, 5)
	def(&c.RateLimit.Health, time.Minute, 5)
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		cfg.withDefaults()
		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	cfg.withDefaults()
	return &cfg, nil
}

// Validate проверяет инварианты, которые cleanenv не выражает тегами.
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}

	if c.Auth.AccessSecret == c.Auth.UnsubscribeSecret || c.Auth.RefreshSecret == c.Auth.UnsubscribeSecret {
		return fmt.Errorf("unsubscribe secret must differ from token secrets")
	}

	if c.Vault.EncryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}

	return nil
}

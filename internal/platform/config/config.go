package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ストアのドライバ名です。
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverRemote   = "remote"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"GRPC_LISTEN_ADDR"`
}

// HTTPConfig は HTTP API サーバーに関する設定です。
type HTTPConfig struct {
	ListenAddr      string        `yaml:"listen_addr" env:"HTTP_LISTEN_ADDR"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"-"`
	ShutdownRaw     string        `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"DB_HOST"`
	Port               int           `yaml:"port" env:"DB_PORT"`
	User               string        `yaml:"user" env:"DB_USER"`
	Password           string        `yaml:"password" env:"DB_PASSWORD"`
	Name               string        `yaml:"name" env:"DB_NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// RedisConfig は Redis ストアの接続設定です。
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR"`
	Password  string `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"REDIS_DB"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`
}

// StoreConfig は社員フォレストの保存先を選択します。
type StoreConfig struct {
	Driver     string        `yaml:"driver" env:"STORE_DRIVER"`
	FilePath   string        `yaml:"file_path" env:"STORE_FILE_PATH"`
	ChartName  string        `yaml:"chart_name" env:"STORE_CHART_NAME"`
	RemoteURL  string        `yaml:"remote_url" env:"STORE_REMOTE_URL"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout" env:"STORE_TIMEOUT"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// LoadEnv は存在する .env ファイルだけを環境変数として読み込み、読み込んだ数を返します。
func LoadEnv(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("config: load env files: %w", err)
	}
	return len(existing), nil
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ORGCHART_"}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.HTTP.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Store.validateAndNormalize(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr must be set for the redis store")
		}
		if c.Redis.KeyPrefix == "" {
			c.Redis.KeyPrefix = "orgchart"
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	return nil
}

func (h *HTTPConfig) validateAndNormalize() error {
	if h.ListenAddr == "" {
		return fmt.Errorf("config: http.listen_addr must be set")
	}
	timeout, err := parseDurationAllowEmpty(h.ShutdownRaw)
	if err != nil {
		return fmt.Errorf("config: http.shutdown_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	h.ShutdownTimeout = timeout
	return nil
}

func (s *StoreConfig) validateAndNormalize() error {
	if s.Driver == "" {
		s.Driver = DriverFile
	}
	if s.ChartName == "" {
		s.ChartName = "default"
	}

	timeout, err := parseDurationAllowEmpty(s.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: store.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	s.Timeout = timeout

	switch s.Driver {
	case DriverMemory, DriverPostgres, DriverRedis:
	case DriverFile:
		if s.FilePath == "" {
			s.FilePath = "assets/data/employees.json"
		}
	case DriverRemote:
		if s.RemoteURL == "" {
			return fmt.Errorf("config: store.remote_url must be set for the remote store")
		}
	default:
		return fmt.Errorf("config: unsupported store.driver %q", s.Driver)
	}
	return nil
}

// Validate は database 設定を検証し、既定値を補います。store.driver が postgres 以外でも DB を使うコマンド向けです。
func (d *DatabaseConfig) Validate() error {
	return d.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(strings.TrimSpace(d.SSLMode)),
	}
	return u.String()
}

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

// EnvPrefix は環境変数による上書きに使う接頭辞です。
const EnvPrefix = "EMPDIR_"

// 保存先ドライバー名です。
const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Store    StoreConfig    `yaml:"store" envPrefix:"STORE_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	MongoDB  MongoDBConfig  `yaml:"mongodb" envPrefix:"MONGODB_"`
	SQLite   SQLiteConfig   `yaml:"sqlite" envPrefix:"SQLITE_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
}

// ServerConfig は HTTP サーバーと gRPC ヘルスチェックに関する設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	HealthListenAddr   string        `yaml:"health_listen_addr" env:"HEALTH_LISTEN_ADDR"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	ReadTimeout        time.Duration `yaml:"-"`
	WriteTimeout       time.Duration `yaml:"-"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw     string        `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeoutRaw    string        `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// StoreConfig は社員レコードの保存先を選びます。
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"HOST"`
	Port               int           `yaml:"port" env:"PORT"`
	User               string        `yaml:"user" env:"USER"`
	Password           string        `yaml:"password" env:"PASSWORD"`
	Name               string        `yaml:"name" env:"NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns       int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME"`
}

// MongoDBConfig は MongoDB 接続に関する設定です。
type MongoDBConfig struct {
	URI               string        `yaml:"uri" env:"URI"`
	Database          string        `yaml:"database" env:"DATABASE"`
	Collection        string        `yaml:"collection" env:"COLLECTION"`
	ConnectTimeout    time.Duration `yaml:"-"`
	ConnectTimeoutRaw string        `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

// SQLiteConfig は組み込み SQLite に関する設定です。
type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// LogConfig はロガーの設定です。File が空なら標準出力のみに書きます。
type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	Format     string `yaml:"format" env:"FORMAT"`
	Output     string `yaml:"output" env:"OUTPUT"`
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// MetricsConfig は Prometheus メトリクスの公開設定です。
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
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

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnvFiles は存在する .env ファイルだけを読み込み、読み込んだ数を返します。
// 既に設定済みの環境変数は上書きしません。
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
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

// EffectivePath はフラグ、CONFIG_PATH、既定値の順で設定ファイルのパスを決めます。
func EffectivePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "assets/local.yaml"
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path must start with /")
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverPostgres
	}

	switch c.Store.Driver {
	case DriverPostgres:
		return c.Database.validateAndNormalize()
	case DriverMongoDB:
		return c.MongoDB.validateAndNormalize()
	case DriverSQLite:
		if c.SQLite.Path == "" {
			c.SQLite.Path = "employees.db"
		}
		return nil
	default:
		return fmt.Errorf("config: store.driver %q is not supported", c.Store.Driver)
	}
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	var err error
	if s.ReadTimeout, err = parseDurationOrDefault(s.ReadTimeoutRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if s.WriteTimeout, err = parseDurationOrDefault(s.WriteTimeoutRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if s.ShutdownTimeout, err = parseDurationOrDefault(s.ShutdownTimeoutRaw, 15*time.Second); err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if len(s.CORSAllowedOrigins) == 0 {
		s.CORSAllowedOrigins = []string{"*"}
	}
	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json")
	}
	switch l.Output {
	case "":
		l.Output = "stdout"
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("config: log.output must be stdout, file or both")
	}
	if l.Output != "stdout" && l.File == "" {
		return fmt.Errorf("config: log.file must be set when log.output is %s", l.Output)
	}
	return nil
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

	lifetime, err := parseDurationOrDefault(d.ConnMaxLifetimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationOrDefault(d.ConnMaxIdleTimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (m *MongoDBConfig) validateAndNormalize() error {
	if m.URI == "" {
		return fmt.Errorf("config: mongodb.uri must be set")
	}
	if m.Database == "" {
		return fmt.Errorf("config: mongodb.database must be set")
	}
	if m.Collection == "" {
		m.Collection = "employees"
	}

	timeout, err := parseDurationOrDefault(m.ConnectTimeoutRaw, 10*time.Second)
	if err != nil {
		return fmt.Errorf("config: mongodb.connect_timeout: %w", err)
	}
	m.ConnectTimeout = timeout
	return nil
}

func parseDurationOrDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

// DSN は pgx と golang-migrate 用の接続文字列を返します。認証情報はエスケープします。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

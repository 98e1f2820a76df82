package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
)

// 社員名簿の負荷 (全件取得が中心で同時接続は少ない) に合わせた既定値です。
const (
	applicationName          = "employee-directory"
	defaultMaxConns          = 8
	defaultHealthCheckPeriod = 30 * time.Second
	defaultConnectTimeout    = 5 * time.Second
	// defaultStatementTimeout はクライアントの既定タイムアウト (10s) を超えないようにします。
	defaultStatementTimeout = "8s"
)

// poolTuning は設定ファイルの値と既定値を合成した接続プールの設定です。
type poolTuning struct {
	maxConns        int32
	minConns        int32
	maxLifetime     time.Duration
	maxIdleTime     time.Duration
	healthCheck     time.Duration
	connectTimeout  time.Duration
	runtimeSettings map[string]string
}

func tuningFor(cfg config.DatabaseConfig) poolTuning {
	t := poolTuning{
		maxConns:       defaultMaxConns,
		maxLifetime:    cfg.ConnMaxLifetime,
		maxIdleTime:    cfg.ConnMaxIdleTime,
		healthCheck:    defaultHealthCheckPeriod,
		connectTimeout: defaultConnectTimeout,
		runtimeSettings: map[string]string{
			"application_name":  applicationName,
			"statement_timeout": defaultStatementTimeout,
		},
	}
	if cfg.MaxOpenConns > 0 {
		t.maxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		t.minConns = int32(cfg.MaxIdleConns)
	}
	// 待機させておく接続数は上限を超えられません。
	if t.minConns > t.maxConns {
		t.minConns = t.maxConns
	}
	return t
}

func (t poolTuning) apply(poolCfg *pgxpool.Config) {
	poolCfg.MaxConns = t.maxConns
	poolCfg.MinConns = t.minConns
	if t.maxLifetime > 0 {
		poolCfg.MaxConnLifetime = t.maxLifetime
	}
	if t.maxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = t.maxIdleTime
	}
	poolCfg.HealthCheckPeriod = t.healthCheck
	if poolCfg.ConnConfig.ConnectTimeout == 0 {
		poolCfg.ConnConfig.ConnectTimeout = t.connectTimeout
	}
	for k, v := range t.runtimeSettings {
		if _, set := poolCfg.ConnConfig.RuntimeParams[k]; !set {
			poolCfg.ConnConfig.RuntimeParams[k] = v
		}
	}
}

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// DSN に明示された接続パラメータは既定値より優先します。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	tuningFor(cfg).apply(poolCfg)
	return poolCfg, nil
}

// NewPool は接続プールを生成し、接続タイムアウト内に疎通できなければ閉じてエラーを返します。
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, poolCfg.ConnConfig.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return pool, nil
}

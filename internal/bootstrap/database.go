package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/migrate"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// postgresURL renders cfg as a pgx connection URL with credentials escaped.
func postgresURL(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	q.Set("application_name", "enrichd")
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB opens a pooled *sql.DB over the pgx driver and verifies it with a ping.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(postgresURL(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	connCfg.ConnectTimeout = connectTimeout

	db := stdlib.OpenDB(*connCfg)
	maxOpen := cfg.DBConfig.MaxOpenConns
	if maxOpen < 2 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(5, maxOpen))
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, closeAfter(fmt.Errorf("ping database: %w", err), "database", db)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
			"max_open_conns", maxOpen,
		)
	}
	return db, nil
}

// ConnectRedis connects a direct, sentinel or cluster client depending on cfg.
//
//nolint:ireturn // callers work against redis.UniversalClient regardless of topology.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	client, desc, err := newRedisClient(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, closeAfter(fmt.Errorf("ping redis: %w", err), "redis client", client)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "addr", desc)
	}
	return client, nil
}

// redisEndpoint is the parsed form of REDIS_URI.
type redisEndpoint struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      *tls.Config
}

// parseRedisURI accepts redis:// and rediss:// URLs or a bare host:port.
// fallbackPassword applies when the URI carries none.
func parseRedisURI(raw, fallbackPassword string) (redisEndpoint, error) {
	raw = strings.TrimSpace(raw)
	ep := redisEndpoint{Addr: raw, Password: fallbackPassword}
	if !strings.HasPrefix(raw, "redis://") && !strings.HasPrefix(raw, "rediss://") {
		return ep, nil
	}
	opt, err := redis.ParseURL(raw)
	if err != nil {
		return redisEndpoint{}, fmt.Errorf("parse redis url: %w", err)
	}
	ep.Addr = opt.Addr
	ep.Username = opt.Username
	ep.DB = opt.DB
	ep.TLS = opt.TLSConfig
	if opt.Password != "" {
		ep.Password = opt.Password
	}
	return ep, nil
}

// newRedisClient builds the client and a credential-free description for logs.
//
//nolint:ireturn // topology is chosen at runtime.
func newRedisClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	switch {
	case cfg.UseCluster:
		addrs := trimmedNonEmpty(cfg.ClusterNodes)
		ep, err := parseRedisURI(cfg.URI, cfg.Password)
		if err != nil {
			return nil, "", err
		}
		if len(addrs) == 0 && ep.Addr != "" {
			addrs = []string{ep.Addr}
		}
		if len(addrs) == 0 {
			return nil, "", errors.New("redis cluster configuration requires at least one address")
		}
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:     addrs,
			Username:  ep.Username,
			Password:  ep.Password,
			TLSConfig: ep.TLS,
		}), "cluster:" + strings.Join(addrs, ","), nil

	case cfg.UseSentinel:
		nodes := trimmedNonEmpty(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.SentinelMasterName,
			SentinelAddrs:    nodes,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
		}), "sentinel:" + cfg.SentinelMasterName, nil

	default:
		ep, err := parseRedisURI(cfg.URI, cfg.Password)
		if err != nil {
			return nil, "", err
		}
		if ep.Addr == "" {
			return nil, "", errors.New("redis direct configuration requires a URI")
		}
		return redis.NewClient(&redis.Options{
			Addr:      ep.Addr,
			Username:  ep.Username,
			Password:  ep.Password,
			DB:        ep.DB,
			TLSConfig: ep.TLS,
		}), ep.Addr, nil
	}
}

func trimmedNonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func closeAfter(err error, name string, c interface{ Close() error }) error {
	if cerr := c.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("close %s: %w", name, cerr))
	}
	return err
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := migrate.Run(ctx, db, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database migrations completed")
	return nil
}

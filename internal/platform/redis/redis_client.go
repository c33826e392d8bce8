// Package redis はキャッシュ用のRedisクライアントを生成します。
package redis

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured はREDIS_HOSTが未設定の場合に返されます。
var ErrNotConfigured = errors.New("redis is not configured")

const pingTimeout = 3 * time.Second

// Options はRedis接続設定です。
type Options struct {
	Host     string
	Port     string
	Password string
}

// Addr は host:port 形式のアドレスを返します。ポート未指定時は6379を使います。
func (o Options) Addr() string {
	port := o.Port
	if port == "" {
		port = "6379"
	}
	return net.JoinHostPort(o.Host, port)
}

// NewRedisClient は接続を確認したうえでクライアントを返します。
// 呼び出し側はエラー時にキャッシュなしで動作を続けます。
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Host == "" {
		return nil, ErrNotConfigured
	}
	addr := opts.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       0,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}

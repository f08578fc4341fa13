package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/session"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

var errNotLoggedIn = errors.New("not logged in (run 'bde login')")

// conn is everything a command needs to talk to the backend as the signed-in user.
type conn struct {
	cfg      CLIConfig
	db       *sql.DB
	redis    *redis.Client
	api      *client.Client
	sessions *session.Manager
	history  *viewing.History
}

// connect opens the local database, builds the API client and restores the
// stored session. A failed restore leaves the connection signed out.
func connect(ctx context.Context, opts ...session.Option) (*conn, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	database, err := openDB()
	if err != nil {
		return nil, err
	}

	c := &conn{
		cfg:     cfg,
		db:      database,
		api:     client.New(cfg.serverURL(), nil),
		history: viewing.NewHistory(database),
	}

	if addr := cfg.redisAddr(); addr != "" {
		c.redis = redis.NewClient(&redis.Options{Addr: addr})
		c.api.UseRedisCache(c.redis, cfg.cacheTTL())
	}
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		c.api.UseRateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst))
	}

	var store session.TokenStore = session.NewSQLiteStore(database, c.api.BaseURL())
	if token := os.Getenv("BDE_TOKEN"); token != "" || flagNoPersist {
		store = session.NewMemoryStore(token)
	}
	c.sessions = session.NewManager(c.api, store, opts...)
	c.api.UseTokens(c.sessions)

	if err := c.sessions.Init(ctx); err != nil {
		slog.Warn("restoring session", "error", err)
	}

	return c, nil
}

// requireSignIn returns errNotLoggedIn when no session is held.
func (c *conn) requireSignIn() error {
	if !c.sessions.SignedIn() {
		return errNotLoggedIn
	}
	return nil
}

// Close stops the session refresh and releases the database and cache.
func (c *conn) Close() {
	c.sessions.Close()
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing redis: %v\n", err)
		}
	}
	closeDB(c.db)
}

// connectSignedIn is connect followed by requireSignIn.
func connectSignedIn(ctx context.Context) (*conn, error) {
	c, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.requireSignIn(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/coursefind/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName    = "coursefind"
	writeTimeout  = 5 * time.Second
	readyInterval = 100 * time.Millisecond
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// TTL expires persisted matrices. Zero keeps them until overwritten.
	TTL time.Duration
}

// Store is a db.Store on Redis or Valkey. Matrices are stored as opaque
// binary strings under their cache key.
type Store struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewStore connects via rueidis. Client-side caching is disabled: every
// key is read once at startup.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("ttl must not be negative")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       clientName,
		ConnWriteTimeout: writeTimeout,
		DisableCache:     true,
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	return newStore(client, cfg.TTL), nil
}

func newStore(client rueidis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the server answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.PollReady(ctx, timeout, readyInterval, s.Ping)
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

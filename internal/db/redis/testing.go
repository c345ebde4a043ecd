package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest wraps a caller-provided rueidis client, typically a gomock one.
func NewStoreForTest(c rueidis.Client, ttl time.Duration) *Store {
	return newStore(c, ttl)
}

package store

import (
	"errors"
	"time"

	"governd/internal/types"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is the error returned when a key is not found in the store.
var ErrNotFound = errors.New("store: key not found")

// Message is the struct for received pub/sub messages.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription represents an active subscription to a pub/sub channel.
type Subscription interface {
	Channel() <-chan *Message
	Close() error
}

// Store is the key-value cache used for connector listings and system
// settings, with pub/sub for cross-instance invalidation.
type Store interface {
	// Set stores a key-value pair with an optional TTL.
	Set(key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by its key.
	Get(key string) ([]byte, error)

	// Delete removes a value by its key.
	Delete(key string) error

	// Del deletes multiple keys.
	Del(keys ...string) error

	// Exists checks if a key exists in the store.
	Exists(key string) (bool, error)

	// SetNX sets a key-value pair if the key does not already exist.
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)

	// Close closes the store and releases any underlying resources.
	Close() error

	// Publish sends a message to a given channel.
	Publish(channel string, message []byte) error

	// Subscribe listens for messages on a given channel.
	Subscribe(channel string) (Subscription, error)
}

// NewStore creates a Redis-backed store when a Redis DSN is configured,
// falling back to the in-memory store for single-instance deployments.
func NewStore(configManager types.ConfigManager) (Store, error) {
	dsn := configManager.GetRedisDSN()
	if dsn == "" {
		logrus.Debug("no REDIS_DSN configured, using in-memory store")
		return NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(redis.NewClient(opts)), nil
}

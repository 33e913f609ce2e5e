package advisoryredis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"bridgehub/pkg/models"
)

// Config configures the Redis advisory publisher.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

// Publisher pushes advisories onto a Redis list for downstream
// consumers (dashboards, peer distribution).
type Publisher struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewPublisher creates a Redis publisher for list-based fan-out.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Publisher{
		client:  client,
		key:     cfg.Key,
		timeout: cfg.Timeout,
	}, nil
}

// WriteAdvisory pushes one advisory onto the list.
func (p *Publisher) WriteAdvisory(adv models.Advisory) error {
	payload, err := json.Marshal(adv)
	if err != nil {
		return fmt.Errorf("failed to marshal advisory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.RPush(ctx, p.key, payload).Err(); err != nil {
		return fmt.Errorf("redis push failed: %w", err)
	}
	return nil
}

// Close closes the publisher.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Package contact delivers contact form messages
package contact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/models"
)

// LogSender writes messages to the structured log
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg models.ContactMessage) error {
	s.logger.Info("contact message received",
		zap.String("message_id", msg.ID),
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.String("subject", msg.Subject),
		zap.Int("body_length", len(msg.Body)),
		zap.Time("received_at", msg.ReceivedAt),
	)
	return nil
}

// Pusher is the part of a redis client the queue sender needs
type Pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisSender queues messages as JSON on a redis list for a mailer to pop
type RedisSender struct {
	client Pusher
	list   string
}

func NewRedisSender(client Pusher, list string) *RedisSender {
	return &RedisSender{client: client, list: list}
}

func (s *RedisSender) Send(ctx context.Context, msg models.ContactMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode contact message: %w", err)
	}

	if err := s.client.LPush(ctx, s.list, string(payload)).Err(); err != nil {
		return fmt.Errorf("failed to queue contact message: %w", err)
	}
	return nil
}

// RedisOptions configures the queue connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a redis client and checks it answers
func Connect(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shalteor/kitchenhub/internal/models"
)

type fakePusher struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakePusher) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.key = key
	f.values = append(f.values, values...)
	return redis.NewIntResult(int64(len(f.values)), f.err)
}

func sampleMessage() models.ContactMessage {
	return models.ContactMessage{
		ID:         "5f0c8c7e-2f6a-4a53-9c7e-0d6f1f0b8b11",
		Name:       "Ann",
		Email:      "ann@example.com",
		Subject:    "Hello",
		Body:       "Lovely recipes",
		ReceivedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisSenderQueuesJSON(t *testing.T) {
	pusher := &fakePusher{}
	sender := NewRedisSender(pusher, "kitchenhub:contact")

	require.NoError(t, sender.Send(context.Background(), sampleMessage()))

	assert.Equal(t, "kitchenhub:contact", pusher.key)
	require.Len(t, pusher.values, 1)

	var got models.ContactMessage
	require.NoError(t, json.Unmarshal([]byte(pusher.values[0].(string)), &got))
	assert.Equal(t, sampleMessage(), got)
}

func TestRedisSenderError(t *testing.T) {
	sender := NewRedisSender(&fakePusher{err: errors.New("connection refused")}, "q")

	err := sender.Send(context.Background(), sampleMessage())
	assert.ErrorContains(t, err, "connection refused")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), sampleMessage()))

	entries := logs.FilterMessage("contact message received").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ann@example.com", fields["email"])
	assert.Equal(t, "Hello", fields["subject"])
}

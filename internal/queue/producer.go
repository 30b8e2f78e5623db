package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	TaskObjectCleanup = "object.cleanup"
	TaskPollExpiry    = "poll.expire"
	TaskResetPurge    = "reset.purge"
)

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

// Enqueue appends a task to the stream. values must be flat string-convertible fields.
func (p *Producer) Enqueue(ctx context.Context, taskType string, values map[string]any) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload := make(map[string]any, len(values)+1)
	for k, v := range values {
		payload[k] = v
	}
	payload["type"] = taskType

	if _, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: payload,
	}).Result(); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (p *Producer) EnqueueObjectCleanup(ctx context.Context, objectKey string) error {
	return p.Enqueue(ctx, TaskObjectCleanup, map[string]any{"objectKey": objectKey})
}

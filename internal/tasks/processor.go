package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"panchayat/internal/queue"
)

type PollExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type ObjectRemover interface {
	RemoveObject(ctx context.Context, objectKey string) error
}

type Processor struct {
	polls   PollExpirer
	users   ResetTokenPurger
	objects ObjectRemover
	now     func() time.Time
	logger  zerolog.Logger
}

func NewProcessor(polls PollExpirer, users ResetTokenPurger, objects ObjectRemover, logger zerolog.Logger) *Processor {
	return &Processor{
		polls:   polls,
		users:   users,
		objects: objects,
		now:     time.Now,
		logger:  logger,
	}
}

// Handle dispatches a stream message by its "type" field. Unknown types are dropped
// so that one bad message does not stay pending forever.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType := stringField(msg.Values, "type")

	switch taskType {
	case queue.TaskObjectCleanup:
		return p.handleObjectCleanup(ctx, msg)
	case queue.TaskPollExpiry:
		return p.handlePollExpiry(ctx)
	case queue.TaskResetPurge:
		return p.handleResetPurge(ctx)
	default:
		p.logger.Warn().Str("type", taskType).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleObjectCleanup(ctx context.Context, msg redis.XMessage) error {
	key := stringField(msg.Values, "objectKey")
	if key == "" {
		p.logger.Warn().Str("message_id", msg.ID).Msg("object cleanup without key")
		return nil
	}
	if err := p.objects.RemoveObject(ctx, key); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	p.logger.Info().Str("object_key", key).Msg("object removed")
	return nil
}

func (p *Processor) handlePollExpiry(ctx context.Context) error {
	n, err := p.polls.DeactivateExpired(ctx, p.now())
	if err != nil {
		return err
	}
	if n > 0 {
		p.logger.Info().Int64("count", n).Msg("expired polls deactivated")
	}
	return nil
}

func (p *Processor) handleResetPurge(ctx context.Context) error {
	n, err := p.users.PurgeExpiredResetTokens(ctx, p.now())
	if err != nil {
		return err
	}
	p.logger.Info().Int64("count", n).Msg("expired reset tokens purged")
	return nil
}

func stringField(values map[string]interface{}, key string) string {
	v, ok := values[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}

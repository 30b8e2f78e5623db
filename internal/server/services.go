package server

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"panchayat/internal/cache"
	"panchayat/internal/config"
	"panchayat/internal/docstore"
	"panchayat/internal/handlers"
	"panchayat/internal/mail"
	"panchayat/internal/models"
	"panchayat/internal/queue"
	"panchayat/internal/repository"
	"panchayat/internal/security"
	"panchayat/internal/service"
)

// Backends are the connections the API process opens at startup.
type Backends struct {
	Postgres *pgxpool.Pool
	Mongo    *mongo.Client
	Redis    *redis.Client
}

// NewHandlerSet builds repositories and services on top of backends.
func NewHandlerSet(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger, b Backends) (handlers.HandlerSet, *queue.Producer, error) {
	db := b.Mongo.Database(cfg.Mongo.Database)
	producer := queue.NewProducer(b.Redis, cfg.Queue.Stream)

	issuer := security.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	users := repository.NewUserRepository(b.Postgres)
	polls := repository.NewPollRepository(b.Postgres)

	news := docstore.NewCollection[models.News](db, "news")
	events := docstore.NewCollection[models.Event](db, "events")
	gallery := docstore.NewCollection[models.GalleryItem](db, "gallery")
	documents := docstore.NewCollection[models.Document](db, "documents")
	meetings := docstore.NewCollection[models.Meeting](db, "meetings")
	members := docstore.NewCollection[models.Member](db, "members")
	serviceTypes := docstore.NewCollection[models.ServiceType](db, "service_types")
	requests := docstore.NewCollection[models.ServiceRequest](db, "service_requests")

	indexes := []struct {
		ensure func(context.Context, ...string) error
		fields []string
	}{
		{news.EnsureIndexes, []string{"category"}},
		{events.EnsureIndexes, []string{"category", "starts_at"}},
		{gallery.EnsureIndexes, []string{"category"}},
		{documents.EnsureIndexes, []string{"category", "file_type"}},
		{meetings.EnsureIndexes, nil},
		{members.EnsureIndexes, []string{"ward"}},
		{serviceTypes.EnsureIndexes, nil},
		{requests.EnsureIndexes, []string{"created_by", "status"}},
	}
	for _, idx := range indexes {
		if err := idx.ensure(ctx, idx.fields...); err != nil {
			return handlers.HandlerSet{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}
	}

	svc := handlers.Services{
		Auth: service.NewAuthService(
			users,
			issuer,
			mail.NewMailer(cfg.Mail),
			cache.NewThrottle(b.Redis, "throttle:"),
			cfg,
			log,
		),
		Polls:           service.NewPollService(polls, log),
		News:            service.NewContentService[models.News, *models.News]("news", news, producer, log),
		Events:          service.NewContentService[models.Event, *models.Event]("events", events, producer, log),
		Gallery:         service.NewContentService[models.GalleryItem, *models.GalleryItem]("gallery", gallery, producer, log),
		Documents:       service.NewContentService[models.Document, *models.Document]("documents", documents, producer, log),
		Meetings:        service.NewContentService[models.Meeting, *models.Meeting]("meetings", meetings, producer, log),
		Members:         service.NewContentService[models.Member, *models.Member]("members", members, producer, log),
		ServiceTypes:    service.NewContentService[models.ServiceType, *models.ServiceType]("service-types", serviceTypes, producer, log),
		ServiceRequests: service.NewServiceRequestService(requests, serviceTypes, log),
	}

	checks := []handlers.HealthCheck{
		{Name: "postgres", Check: b.Postgres.Ping},
		{Name: "mongo", Check: func(ctx context.Context) error { return b.Mongo.Ping(ctx, readpref.Primary()) }},
		{Name: "redis", Check: func(ctx context.Context) error { return b.Redis.Ping(ctx).Err() }},
	}

	return handlers.NewHandlerSet(log, cfg, security.NewGuard(issuer), svc, checks...), producer, nil
}
